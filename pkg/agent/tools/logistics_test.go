package tools

import (
	"context"
	"testing"
	"time"

	"ai-cservice-be/pkg/agent/backend"
)

func TestLogisticsToolTrack(t *testing.T) {
	tool := NewLogisticsTool(backend.NewMockWithClock(testClock), testClock)

	res, err := tool.Execute(context.Background(), Params{"orderId": "ORD20240115001", "userId": "u1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute() failed: %s", res.Message)
	}
	if res.Logistics == nil || len(res.Logistics.Routes) != 4 {
		t.Fatalf("Execute() logistics = %+v, want 4 routes", res.Logistics)
	}
	if res.Status != "正常" {
		t.Errorf("status = %q, want 正常 (anomalies: %+v)", res.Status, res.Anomalies)
	}
}

func TestLogisticsToolUnknownOrder(t *testing.T) {
	tool := NewLogisticsTool(backend.NewMockWithClock(testClock), testClock)

	res, err := tool.Execute(context.Background(), Params{"orderId": "ORD404", "userId": "u1"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Success {
		t.Error("Execute() succeeded for an unknown order")
	}
}

func TestLogisticsToolMissingParams(t *testing.T) {
	tool := NewLogisticsTool(backend.NewMockWithClock(testClock), testClock)

	if _, err := tool.Execute(context.Background(), Params{"userId": "u1"}); err == nil {
		t.Error("Execute() without orderId did not error")
	}
	if _, err := tool.Execute(context.Background(), Params{"orderId": "ORD20240115001"}); err == nil {
		t.Error("Execute() without userId did not error")
	}
}

func TestDetectAnomalies(t *testing.T) {
	now := testClock()
	eta := now.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		logistics *backend.Logistics
		wantTypes []string
	}{
		{
			name: "stale update",
			logistics: &backend.Logistics{
				CurrentStatus: "运输中",
				Routes: []backend.Route{
					{Location: "北京市转运中心", Time: now.Add(-72 * time.Hour)},
				},
			},
			wantTypes: []string{"超时未更新"},
		},
		{
			name: "past estimated delivery",
			logistics: &backend.Logistics{
				CurrentStatus:     "派送中",
				EstimatedDelivery: &eta,
				Routes: []backend.Route{
					{Location: "北京市朝阳区", Time: now.Add(-2 * time.Hour)},
				},
			},
			wantTypes: []string{"超时未送达"},
		},
		{
			name: "stalled between nodes",
			logistics: &backend.Logistics{
				CurrentStatus: "运输中",
				Routes: []backend.Route{
					{Location: "石家庄转运中心", Time: now.Add(-7 * 24 * time.Hour)},
					{Location: "唐山市路南区", Time: now.Add(-6 * time.Hour)},
				},
			},
			wantTypes: []string{"停滞过久"},
		},
		{
			name: "delivered is never stale",
			logistics: &backend.Logistics{
				CurrentStatus:     backend.StatusDelivered,
				EstimatedDelivery: &eta,
				Routes: []backend.Route{
					{Location: "北京市朝阳区", Time: now.Add(-100 * time.Hour)},
				},
			},
			wantTypes: nil,
		},
		{
			name: "healthy route",
			logistics: &backend.Logistics{
				CurrentStatus: "运输中",
				Routes: []backend.Route{
					{Location: "北京市转运中心", Time: now.Add(-10 * time.Hour)},
					{Location: "石家庄转运中心", Time: now.Add(-2 * time.Hour)},
				},
			},
			wantTypes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAnomalies(tt.logistics, now)
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("DetectAnomalies() = %+v, want types %v", got, tt.wantTypes)
			}
			for i, wantType := range tt.wantTypes {
				if got[i].Type != wantType {
					t.Errorf("anomaly %d type = %q, want %q", i, got[i].Type, wantType)
				}
			}
		})
	}
}
