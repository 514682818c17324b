package main

import (
	"context"
	"log"
	"os"

	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/pkg/logger"
	"ai-cservice-be/internal/repository/unitofwork"
	"ai-cservice-be/internal/service"
	"ai-cservice-be/pkg/database"
	"ai-cservice-be/pkg/embedding"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

type seedDocument struct {
	Name    string
	Content string
}

// Baseline knowledge base for a fresh installation. Each document is split
// and embedded through the same ingestion path the API uses.
var seedDocuments = []seedDocument{
	{
		Name: "退货政策",
		Content: "退货政策说明。自收到商品之日起7天内，商品保持原状且不影响二次销售的，可申请无理由退货。" +
			"退货运费说明：商品质量问题由商家承担运费，非质量问题由买家承担。" +
			"以下商品不支持无理由退货：定制类商品、鲜活易腐商品、已拆封的个人护理用品。" +
			"退款将在收到退货商品并验收合格后3个工作日内原路返还。",
	},
	{
		Name: "配送说明",
		Content: "配送说明。订单在支付成功后24小时内发货，偏远地区可能延长至48小时。" +
			"普通快递通常3到5天送达，同城订单支持次日达。" +
			"物流信息可在订单详情页查询，如超过7天未收到商品，请联系客服处理。" +
			"签收前请检查外包装是否完好，破损件可当场拒收。",
	},
	{
		Name: "价格保护规则",
		Content: "价格保护规则。商品在签收后7天内出现降价的，可申请价格保护，差价将以原支付方式退回。" +
			"参与秒杀、拼团等活动的价格变动不在价保范围内。" +
			"每个订单仅可申请一次价格保护，申请时需提供订单号和当前售价截图。",
	},
	{
		Name: "常见问题",
		Content: "常见问题解答。如何修改收货地址：订单发货前可在订单详情页自助修改，发货后请联系客服拦截。" +
			"发票如何开具：支持电子发票，下单时填写抬头即可，发货后自动发送至邮箱。" +
			"优惠券无法使用：请检查券的适用品类和有效期，部分商品不参与优惠活动。" +
			"账号无法登录：可通过绑定手机号找回密码，连续输错5次将锁定30分钟。",
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("failed to connect to database: %v", err)
		os.Exit(1)
	}

	provider := buildEmbeddingProvider()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	seedLogger := logger.NewZapLogger("logs/seed.log", false)
	knowledge := service.NewKnowledgeService(uowFactory, provider, 0, 0, 0, seedLogger)

	ctx := context.Background()
	color.Cyan("Seeding knowledge base (%d documents)...", len(seedDocuments))

	for _, doc := range seedDocuments {
		resp, err := knowledge.Ingest(ctx, &dto.IngestDocumentRequest{
			Name:    doc.Name,
			Content: doc.Content,
		})
		if err != nil {
			color.Red("  ✗ %s: %v", doc.Name, err)
			os.Exit(1)
		}
		color.Green("  ✓ %s (%d chunks)", resp.Name, resp.ChunkCount)
	}

	stats, err := knowledge.Stats(ctx)
	if err != nil {
		color.Red("failed to read stats: %v", err)
		os.Exit(1)
	}
	color.Cyan("Done: %d documents, %d chunks in knowledge base", stats.DocumentCount, stats.ChunkCount)
}

func buildEmbeddingProvider() embedding.Provider {
	switch os.Getenv("EMBEDDING_PROVIDER") {
	case "dashscope":
		return embedding.NewDashScopeProvider(
			os.Getenv("DASHSCOPE_API_KEY"),
			os.Getenv("DASHSCOPE_BASE_URL"),
			os.Getenv("EMBEDDING_MODEL"),
		)
	case "ollama":
		return embedding.NewOllamaProvider(
			os.Getenv("OLLAMA_BASE_URL"),
			os.Getenv("EMBEDDING_MODEL"),
		)
	default:
		return embedding.NewDeterministicProvider(0)
	}
}
