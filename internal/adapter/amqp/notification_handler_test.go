package amqp

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
)

func TestNotificationHandler(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "placed",
			body: `{"event_id":"e1","type":"order.placed","order_id":7,"user_id":3,"total":"18.75"}`,
			want: "Order 7 placed by user 3, total 18.75",
		},
		{
			name: "assigned",
			body: `{"event_id":"e2","type":"order.assigned","order_id":7,"delivery_crew_id":30,"changed_by":"manager"}`,
			want: "Order 7 assigned to delivery crew 30 by manager",
		},
		{
			name: "delivered",
			body: `{"event_id":"e3","type":"order.delivered","order_id":7,"delivered":true,"changed_by":"crew"}`,
			want: "Order 7 delivered, marked by crew",
		},
		{name: "not json", body: `{`, wantErr: true},
		{name: "missing order", body: `{"type":"order.placed"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := NewNotificationHandler(logger.Nop(), &out)

			err := h.HandleNotification(context.Background(), []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}
