package response

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-cservice-be/pkg/llm"
)

// Source is one knowledge-base excerpt handed to the model as grounding
// context.
type Source struct {
	DocumentName string  `json:"documentName"`
	Content      string  `json:"content"`
	Score        float64 `json:"score"`
}

const systemPromptHeader = `你是一个专业的电商客服助手，负责回答用户关于产品、售后、物流等问题。

重要限制：
1. 只回答电商客服相关的问题（产品咨询、订单查询、退款退货、物流配送、会员权益、优惠券等）
2. 如果用户询问与电商客服无关的问题（如天气、新闻、娱乐、个人隐私、政治等），请礼貌地拒绝
3. 拒绝话术示例："很抱歉，我只能回答电商客服相关的问题。关于您的问题，建议您咨询其他渠道。"

`

// Generator phrases answers with the configured model and degrades to a
// rule-based reply when the model call fails, so callers always receive
// a non-empty answer.
type Generator struct {
	provider llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{provider: provider}
}

// Generate answers a question grounded on the retrieved excerpts and
// the conversation history. An empty context list is allowed.
func (g *Generator) Generate(ctx context.Context, question string, contexts []Source, history []llm.Message) string {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: buildSystemPrompt(contexts)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	answer, err := g.provider.Chat(ctx, messages, llm.WithTemperature(0.7), llm.WithMaxTokens(2000))
	if err != nil {
		return RuleBasedAnswer(question, contexts)
	}
	return answer
}

// GenerateToolReply phrases a tool's structured result as a natural
// answer. When the model is unavailable the raw result message (or a
// generic completion notice) is returned instead.
func (g *Generator) GenerateToolReply(ctx context.Context, question string, toolResult any) string {
	encoded, err := json.MarshalIndent(toolResult, "", "  ")
	if err != nil {
		encoded = []byte(fmt.Sprintf("%+v", toolResult))
	}

	prompt := fmt.Sprintf(
		"用户问题: %s\n\n查询结果:\n%s\n\n请根据查询结果，用友好、自然的语言回答用户问题。如果查询成功，给出清晰的答复；如果查询失败，说明原因并给出建议。",
		question, encoded)

	answer, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.7), llm.WithMaxTokens(2000))
	if err != nil {
		return toolFallback(toolResult)
	}
	return answer
}

// GenerateTaskReply phrases a task execution report. The report itself
// is the fallback; it is already human-readable.
func (g *Generator) GenerateTaskReply(ctx context.Context, question, report string) string {
	prompt := fmt.Sprintf(
		"用户问题: %s\n\n任务执行报告:\n%s\n\n请根据任务执行报告，用友好、自然的语言向用户说明已完成的操作和结果。",
		question, report)

	answer, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.7), llm.WithMaxTokens(2000))
	if err != nil {
		return report
	}
	return answer
}

func buildSystemPrompt(contexts []Source) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)

	if len(contexts) > 0 {
		b.WriteString("请根据以下知识库内容回答问题：\n\n")
		for i, ctx := range contexts {
			fmt.Fprintf(&b, "【知识来源 %d】\n", i+1)
			fmt.Fprintf(&b, "文档：%s\n", ctx.DocumentName)
			fmt.Fprintf(&b, "内容：%s\n\n", truncateRunes(ctx.Content, 500))
		}
		b.WriteString("\n请基于以上知识库内容回答用户问题。如果知识库中没有相关信息，请礼貌地说明。\n\n")
	} else {
		b.WriteString("知识库中没有找到相关内容。请根据电商客服知识尽可能回答，如果完全无关请拒绝回答。\n\n")
	}

	b.WriteString(`回答要求：
1. 只回答电商客服相关的问题
2. 回答要准确、简洁、友好
3. 引用知识来源时要明确标注
4. 如果不确定，要诚实说明
5. 遇到无关问题时，礼貌拒绝并说明你的职责范围
6. 语言要符合电商客服的专业规范`)

	return b.String()
}

// RuleBasedAnswer extracts the leading sentences of the retrieved
// excerpts and names their documents. It needs no model call.
func RuleBasedAnswer(_ string, contexts []Source) string {
	if len(contexts) == 0 {
		return "抱歉，我在知识库中没有找到相关的信息。建议您联系人工客服获取更详细的帮助。"
	}

	var content strings.Builder
	for _, ctx := range contexts {
		content.WriteString(ctx.Content)
		content.WriteString("\n\n")
	}

	var sentences []string
	for _, s := range strings.FieldsFunc(content.String(), func(r rune) bool {
		return r == '。' || r == '！' || r == '？' || r == '\n'
	}) {
		if len([]rune(strings.TrimSpace(s))) > 10 {
			sentences = append(sentences, strings.TrimSpace(s))
		}
	}

	if len(sentences) == 0 {
		return "抱歉，没有找到相关信息。建议您联系人工客服。"
	}
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	answer := strings.Join(sentences, "。") + "。"

	var sources []string
	seen := make(map[string]bool)
	for _, ctx := range contexts {
		if !seen[ctx.DocumentName] {
			seen[ctx.DocumentName] = true
			sources = append(sources, ctx.DocumentName)
		}
	}
	if len(sources) > 0 {
		answer += fmt.Sprintf("\n\n以上信息来自：%s", strings.Join(sources, "、"))
	}

	return answer
}

func toolFallback(toolResult any) string {
	if data, err := json.Marshal(toolResult); err == nil {
		var m struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &m) == nil && m.Message != "" {
			return m.Message
		}
	}
	return "已为您完成查询，详细结果请见下方数据。"
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
