package tools

import (
	"context"
	"fmt"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

const ToolQueryLogistics = "query_logistics"

// LogisticsTool returns an order's tracking route plus derived anomalies.
type LogisticsTool struct {
	logistics backend.LogisticsSource
	now       func() time.Time
}

var _ Tool = &LogisticsTool{}

func NewLogisticsTool(logistics backend.LogisticsSource, now func() time.Time) *LogisticsTool {
	if now == nil {
		now = time.Now
	}
	return &LogisticsTool{logistics: logistics, now: now}
}

func (t *LogisticsTool) Name() string { return ToolQueryLogistics }

func (t *LogisticsTool) Description() string {
	return "查询订单的物流轨迹信息，包括发货、运输、派送等状态，可以检测物流异常"
}

func (t *LogisticsTool) Parameters() map[string]string {
	return map[string]string{
		"orderId": "订单号（字符串），必需参数",
		"userId":  "用户ID（字符串），必需参数",
	}
}

func (t *LogisticsTool) Execute(ctx context.Context, params Params) (*Result, error) {
	orderID := params.String("orderId")
	userID := params.String("userId")
	if orderID == "" || userID == "" {
		return nil, fmt.Errorf("订单号和用户ID都是必需参数")
	}

	logistics, err := t.logistics.Track(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("track logistics: %w", err)
	}
	if logistics == nil {
		return Failure("未找到该订单的物流信息"), nil
	}

	anomalies := DetectAnomalies(logistics, t.now())

	status := "正常"
	if len(anomalies) > 0 {
		status = "异常"
	}

	return &Result{
		Success:   true,
		Logistics: logistics,
		Anomalies: anomalies,
		Status:    status,
	}, nil
}

// DetectAnomalies applies three checks to a tracking record:
// no route update for over 48 hours while undelivered, delivery past
// the carrier estimate, and a gap of more than 5 days between the last
// two route entries.
func DetectAnomalies(logistics *backend.Logistics, now time.Time) []backend.Anomaly {
	anomalies := []backend.Anomaly{}
	if len(logistics.Routes) == 0 {
		return anomalies
	}

	delivered := logistics.CurrentStatus == backend.StatusDelivered

	lastUpdate := logistics.Routes[len(logistics.Routes)-1].Time
	if !delivered && now.Sub(lastUpdate) > 48*time.Hour {
		anomalies = append(anomalies, backend.Anomaly{
			Type:        "超时未更新",
			Severity:    "高",
			Description: "物流信息已超过48小时未更新，可能存在异常",
		})
	}

	if logistics.EstimatedDelivery != nil && !delivered && now.After(*logistics.EstimatedDelivery) {
		anomalies = append(anomalies, backend.Anomaly{
			Type:        "超时未送达",
			Severity:    "中",
			Description: fmt.Sprintf("预计送达时间 %s 已过，但尚未签收", logistics.EstimatedDelivery.Format("2006-01-02")),
		})
	}

	if len(logistics.Routes) >= 2 {
		prev := logistics.Routes[len(logistics.Routes)-2]
		last := logistics.Routes[len(logistics.Routes)-1]
		if last.Time.Sub(prev.Time) > 5*24*time.Hour {
			anomalies = append(anomalies, backend.Anomaly{
				Type:        "停滞过久",
				Severity:    "中",
				Description: fmt.Sprintf("物流在%s停留超过5天", prev.Location),
			})
		}
	}

	return anomalies
}
