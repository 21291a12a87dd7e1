package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// notifyRosterUpdated 把排餐表变更通知投递到邮件队列。排餐表已经写入成功，
// 所以投递失败只记录日志
func (h *Handler) notifyRosterUpdated(rosters []*domain.DailyRoster, notes string, updatedBy string) {
	if h.mailChannel == nil || h.config.Email.KitchenAddress == "" || len(rosters) == 0 {
		return
	}

	data := domain.RosterUpdatedMailData{
		Dates:     make([]string, 0, len(rosters)),
		ItemNames: make([]string, 0, len(rosters[0].Items)),
		Notes:     notes,
		UpdatedBy: updatedBy,
	}
	for _, roster := range rosters {
		data.Dates = append(data.Dates, roster.Date.String())
	}
	// 所有日期的菜品相同
	for _, item := range rosters[0].Items {
		data.ItemNames = append(data.ItemNames, item.Name)
	}

	mailData, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeRosterUpdated,
		To:   h.config.Email.KitchenAddress,
		Data: data,
	})
	if err != nil {
		mailPublishTotal.WithLabelValues("error").Inc()
		slog.Error("序列化邮件失败", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		mailPublishTotal.WithLabelValues("error").Inc()
		slog.Error("投递排餐表通知失败", "dates", data.Dates, "error", err)
		return
	}

	mailPublishTotal.WithLabelValues("ok").Inc()
}
