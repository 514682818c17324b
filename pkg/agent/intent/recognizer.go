package intent

import (
	"regexp"
	"strconv"
	"strings"

	"ai-cservice-be/pkg/agent/tools"
)

// Intent names produced by the recognizer.
const (
	IntentQueryOrder     = "query_order"
	IntentQueryLogistics = "query_logistics"
	IntentReturn         = "return"
	IntentPriceProtect   = "price_protect"
	IntentQueryRefund    = "query_refund"
	IntentUnknown        = "unknown"
)

// Recognition is the outcome of matching one user message.
type Recognition struct {
	Intent     string       `json:"intent"`
	Tool       string       `json:"tool,omitempty"`
	Params     tools.Params `json:"params"`
	Confidence float64      `json:"confidence"`
}

type pattern struct {
	intent   string
	keywords []string
	tool     string
	extract  func(message, userID string) tools.Params
}

var (
	orderIDPattern      = regexp.MustCompile(`(?i)ORD\d+|订单号\s*[:：]?\s*([A-Z0-9]+)`)
	orderIDPrefix       = regexp.MustCompile(`(?i)订单号\s*[:：]?\s*`)
	longDigitPattern    = regexp.MustCompile(`\d{10,}`)
	pricePattern        = regexp.MustCompile(`(\d+\.?\d*)\s*(?:元|块|钱)`)
	loweredPricePattern = regexp.MustCompile(`现在\s*(\d+\.?\d*)|(?:降到|降价|优惠)\s*(?:至|到)?\s*(\d+\.?\d*)`)
	reasonPrefixPattern = regexp.MustCompile(`(?:理由|原因)[:：]\s*([^，]+)`)

	reasonPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`质量问题|有毛病|坏了`),
		regexp.MustCompile(`不想要了|不喜欢|不合适`),
		regexp.MustCompile(`尺寸不对|大小不合适`),
		regexp.MustCompile(`颜色不对`),
		regexp.MustCompile(`发错货|发错了`),
	}

	escalationKeywords = []string{
		"人工",
		"转人工",
		"客服",
		"投诉",
		"不满意",
		"无法解决",
		"帮我处理",
		"需要帮助",
		"问题解决不了",
	}
)

// Recognizer maps user messages onto tool intents by keyword matching.
// Patterns are tried in declaration order and the first intent with any
// matching keyword wins.
type Recognizer struct {
	patterns []pattern
}

func NewRecognizer() *Recognizer {
	r := &Recognizer{}
	r.patterns = []pattern{
		{
			intent:   IntentQueryOrder,
			keywords: []string{"订单", "我的订单", "查订单", "订单号", "查一下订单", "查看订单"},
			tool:     tools.ToolQueryOrder,
			extract:  extractOrderParams,
		},
		{
			intent:   IntentQueryLogistics,
			keywords: []string{"物流", "快递", "配送", "发货", "到哪了", "配送情况", "物流信息", "快递单号"},
			tool:     tools.ToolQueryLogistics,
			extract:  extractLogisticsParams,
		},
		{
			intent:   IntentReturn,
			keywords: []string{"退货", "退换货", "想退货", "申请退货", "我要退货"},
			tool:     tools.ToolProcessReturn,
			extract:  extractReturnParams,
		},
		{
			intent:   IntentPriceProtect,
			keywords: []string{"降价", "便宜", "价格保护", "差价", "补差价", "现在多少钱", "降价了"},
			tool:     tools.ToolPaymentOperation,
			extract:  extractPriceProtectParams,
		},
		{
			intent:   IntentQueryRefund,
			keywords: []string{"退款", "退钱了", "退款进度", "退款到账", "退款状态"},
			tool:     tools.ToolPaymentOperation,
			extract:  extractRefundParams,
		},
	}
	return r
}

// Recognize matches the message against each intent's keyword set. An
// unmatched message yields intent "unknown" with the raw message kept
// in the params.
func (r *Recognizer) Recognize(message, userID string) Recognition {
	lower := strings.ToLower(message)

	for _, p := range r.patterns {
		for _, keyword := range p.keywords {
			if strings.Contains(lower, keyword) {
				return Recognition{
					Intent:     p.intent,
					Tool:       p.tool,
					Params:     p.extract(message, userID),
					Confidence: 0.9,
				}
			}
		}
	}

	return Recognition{
		Intent:     IntentUnknown,
		Params:     tools.Params{"userId": userID, "message": message},
		Confidence: 0,
	}
}

// ShouldEscalate checks for explicit requests for a human agent. It is
// evaluated before intent recognition.
func (r *Recognizer) ShouldEscalate(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range escalationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ExtractOrderID pulls an explicit ORD-prefixed token, an id following
// the Chinese order-number label, or a long digit run as fallback.
func ExtractOrderID(message string) string {
	if m := orderIDPattern.FindString(message); m != "" {
		return orderIDPrefix.ReplaceAllString(m, "")
	}
	return longDigitPattern.FindString(message)
}

func extractOrderParams(message, userID string) tools.Params {
	params := tools.Params{"userId": userID}
	if orderID := ExtractOrderID(message); orderID != "" {
		params["orderId"] = orderID
	}
	return params
}

func extractLogisticsParams(message, userID string) tools.Params {
	return extractOrderParams(message, userID)
}

func extractReturnParams(message, userID string) tools.Params {
	params := tools.Params{"userId": userID, "action": tools.ReturnActionCreate}
	if orderID := ExtractOrderID(message); orderID != "" {
		params["orderId"] = orderID
	}
	params["reason"] = extractReturnReason(message)
	return params
}

func extractReturnReason(message string) string {
	for _, p := range reasonPhrasePatterns {
		if m := p.FindString(message); m != "" {
			return m
		}
	}
	if m := reasonPrefixPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return "用户未提供具体原因"
}

func extractPriceProtectParams(message, userID string) tools.Params {
	params := tools.Params{"userId": userID, "action": tools.PaymentActionPriceProtect}
	if orderID := ExtractOrderID(message); orderID != "" {
		params["orderId"] = orderID
	}
	if price, ok := extractCurrentPrice(message); ok {
		params["currentPrice"] = price
	}
	return params
}

// extractCurrentPrice prefers the "现在/降到 X" form over a bare
// currency amount, since the latter may be the original price.
func extractCurrentPrice(message string) (float64, bool) {
	if m := loweredPricePattern.FindStringSubmatch(message); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			return price, true
		}
	}
	if m := pricePattern.FindStringSubmatch(message); m != nil {
		if price, err := strconv.ParseFloat(m[1], 64); err == nil {
			return price, true
		}
	}
	return 0, false
}

func extractRefundParams(message, userID string) tools.Params {
	params := tools.Params{"userId": userID, "action": tools.PaymentActionQueryRefund}
	if orderID := ExtractOrderID(message); orderID != "" {
		params["orderId"] = orderID
	}
	return params
}
