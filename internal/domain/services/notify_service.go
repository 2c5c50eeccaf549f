package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/pkg/logger"
)

// TicketNotifier 工单提交后的通知
type TicketNotifier interface {
	NotifyTicketSubmitted(ctx context.Context, ticket models.SupportTicket, status SubmissionStatus) error
}

// TicketSubmittedMessage 发布到 MQTT 的工单通知，不包含住户姓名和电话
type TicketSubmittedMessage struct {
	MessageID  string           `json:"message_id"`
	Event      string           `json:"event"`
	TicketID   string           `json:"ticket_id"`
	TowerBlock string           `json:"tower_block"`
	UnitNumber string           `json:"unit_number"`
	IssueType  models.IssueType `json:"issue_type"`
	Urgency    models.Urgency   `json:"urgency"`
	Status     SubmissionStatus `json:"status"`
	Timestamp  int64            `json:"timestamp"`
}

// NewTicketSubmittedMessage 构建工单通知
func NewTicketSubmittedMessage(ticket models.SupportTicket, status SubmissionStatus) TicketSubmittedMessage {
	return TicketSubmittedMessage{
		MessageID:  uuid.New().String(),
		Event:      "ticket_submitted",
		TicketID:   ticket.ID,
		TowerBlock: ticket.TowerBlock,
		UnitNumber: ticket.UnitNumber,
		IssueType:  ticket.IssueType,
		Urgency:    ticket.Urgency,
		Status:     status,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// MQTTNotifyService 通过 MQTT 通知值班人员有新工单
type MQTTNotifyService struct {
	Config *config.Config
	Client mqtt.Client
	Topic  string

	connectOnce sync.Once
}

// NewMQTTNotifyService 创建通知服务，需调用 Start 建立连接
func NewMQTTNotifyService(cfg *config.Config) *MQTTNotifyService {
	s := &MQTTNotifyService{Config: cfg, Topic: cfg.MQTTTicketTopic}
	s.Client = mqtt.NewClient(s.clientOptions())
	return s
}

func (s *MQTTNotifyService) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	url := s.Config.MQTTBrokerURL
	if strings.HasPrefix(url, "ssl://") || strings.HasPrefix(url, "tls://") || s.Config.MQTTSSLEnabled {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warning("[MQTT] 连接丢失: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("[MQTT] 成功连接到 %s", url)
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Info("[MQTT] 正在尝试重连...")
	})
	return opts
}

// 1 Start 在后台连接，使用指数退避重试，之后由客户端自动重连
func (s *MQTTNotifyService) Start() {
	s.connectOnce.Do(func() {
		go func() {
			const maxRetries = 5
			for i := 0; i < maxRetries; i++ {
				token := s.Client.Connect()
				if token.WaitTimeout(5*time.Second) && token.Error() == nil {
					return
				}
				backoff := time.Duration(1<<uint(i)) * time.Second
				logger.Warning("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, maxRetries, token.Error(), backoff)
				time.Sleep(backoff)
			}
			logger.Error("[MQTT] 连接失败，工单通知将被跳过")
		}()
	})
}

// 2 NotifyTicketSubmitted 发布工单通知，未连接时直接跳过
func (s *MQTTNotifyService) NotifyTicketSubmitted(ctx context.Context, ticket models.SupportTicket, status SubmissionStatus) error {
	if s.Client == nil || !s.Client.IsConnected() {
		return fmt.Errorf("MQTT客户端未连接")
	}

	payload, err := json.Marshal(NewTicketSubmittedMessage(ticket, status))
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	token := s.Client.Publish(s.Topic, byte(s.Config.MQTTQoS), s.Config.MQTTRetained, payload)
	wait := 3 * time.Second
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
		wait = time.Until(deadline)
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("发布消息超时")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}
	logger.Info("[MQTT] 已发布工单 %s 通知到主题: %s", ticket.ID, s.Topic)
	return nil
}

// 3 Stop 断开连接
func (s *MQTTNotifyService) Stop() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}
