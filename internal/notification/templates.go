package notification

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type messageTemplate struct {
	subject string
	body    *template.Template
}

var messageTemplates = map[domain.NotificationType]messageTemplate{
	domain.NotificationBookingConfirmed: {
		subject: "Запись подтверждена",
		body: template.Must(template.New("confirmed").Parse(
			`Здравствуйте, {{.CustomerName}}!

Ваша запись подтверждена.
Дата: {{.Date}}
Время: {{.Time}}
Мастер: {{.StaffName}}
Услуги: {{.Services}}
Стоимость: {{.TotalPrice}}

До встречи!
`)),
	},
	domain.NotificationBookingCancelled: {
		subject: "Запись отменена",
		body: template.Must(template.New("cancelled").Parse(
			`Здравствуйте, {{.CustomerName}}!

Ваша запись на {{.Date}} в {{.Time}} отменена.
Будем рады видеть вас снова.
`)),
	},
	domain.NotificationBookingReminder: {
		subject: "Напоминание о записи",
		body: template.Must(template.New("reminder").Parse(
			`Здравствуйте, {{.CustomerName}}!

Напоминаем о визите завтра, {{.Date}}, в {{.Time}}.
Мастер: {{.StaffName}}
Услуги: {{.Services}}
`)),
	},
}

// messageData поля шаблона, время уже переведено в пояс салона
type messageData struct {
	CustomerName string
	Date         string
	Time         string
	StaffName    string
	Services     string
	TotalPrice   string
}

func newMessageData(b domain.Booking, loc *time.Location) messageData {
	names := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		names = append(names, item.ServiceName)
	}

	staff := b.StaffName
	if staff == "" {
		staff = "любой свободный мастер"
	}

	return messageData{
		CustomerName: b.CustomerName,
		Date:         b.StartTime.In(loc).Format("02.01.2006"),
		Time:         b.StartTime.In(loc).Format(domain.TimeFormat),
		StaffName:    staff,
		Services:     strings.Join(names, ", "),
		TotalPrice:   fmt.Sprintf("%.2f", b.TotalPrice),
	}
}

// renderMessage тема и текст письма для события
func renderMessage(event domain.NotificationEvent, loc *time.Location) (string, string, error) {
	tmpl, ok := messageTemplates[event.Type]
	if !ok {
		return "", "", fmt.Errorf("notification: no template for event type %q", event.Type)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, newMessageData(event.Booking, loc)); err != nil {
		return "", "", fmt.Errorf("notification: render %s: %w", event.Type, err)
	}
	return tmpl.subject, buf.String(), nil
}
