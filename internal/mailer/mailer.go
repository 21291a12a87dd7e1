package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrUnsupportedType = errors.New("unsupported mail type")

type kind struct {
	template string
	subject  string
	data     func() any
}

var kinds = map[string]kind{
	domain.MailTypeRosterUpdated: {
		template: "roster_updated_email.html",
		subject:  "Palm Court 后厨 - 排餐表已更新",
		data:     func() any { return &domain.RosterUpdatedMailData{} },
	},
}

// queuedMessage 和 domain.MailMessage 对应，Data 延迟到确定类型后再解析
type queuedMessage struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Builder 根据队列中的消息和模板目录构建邮件
type Builder struct {
	templateDir string
	from        string
}

func NewBuilder(templateDir, from string) *Builder {
	return &Builder{templateDir: templateDir, from: from}
}

// Build 解析一条队列消息。返回的错误表示消息本身有问题，重新投递也不会成功
func (b *Builder) Build(body []byte) (*mail.Msg, error) {
	var qm queuedMessage
	if err := json.Unmarshal(body, &qm); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	k, ok := kinds[qm.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, qm.Type)
	}

	data := k.data()
	if len(qm.Data) > 0 {
		if err := json.Unmarshal(qm.Data, data); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", qm.Type, err)
		}
	}

	tmpl, err := template.ParseFiles(filepath.Join(b.templateDir, k.template))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(b.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(qm.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	msg.Subject(k.subject)

	return msg, nil
}
