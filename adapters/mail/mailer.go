package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/smallnest/chanx"
)

// ErrMailerClosed 表示寄信佇列已關閉
var ErrMailerClosed = errors.New("mailer is closed")

// Message 是一封待寄出的信件
type Message struct {
	To      string
	Subject string
	Body    string
}

// ISender 是實際寄出信件的傳輸層
type ISender interface {
	Send(msg Message) error
}

// IEnqueuer 是服務層看到的寄信入口，只負責把信排入佇列
type IEnqueuer interface {
	Enqueue(msg Message) error
}

// AsyncMailer 以背景 worker 非同步寄信
// Enqueue 永遠不會阻塞請求，寄送失敗只會留下 log，不會重試
type AsyncMailer struct {
	sender     ISender
	upstream   *chanx.UnboundedChan[Message]
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	logger     *slog.Logger
}

// NewAsyncMailer 建立新的 AsyncMailer
func NewAsyncMailer(sender ISender, logger *slog.Logger) *AsyncMailer {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncMailer{
		sender:     sender,
		upstream:   chanx.NewUnboundedChan[Message](ctx, 16),
		ctx:        ctx,
		cancelFunc: cancel,
		closed:     false,
		logger:     logger.With(slog.String("caller", "AsyncMailer")),
	}
}

// Start 啟動寄信 worker
func (m *AsyncMailer) Start() {
	m.logger.Info("starting mail worker")
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.logger.Info("mail worker stopped")

		for {
			select {
			case <-m.ctx.Done():
				return
			case msg, ok := <-m.upstream.Out:
				if !ok {
					return
				}
				if err := m.sender.Send(msg); err != nil {
					// best-effort：失敗只記 log，不影響任何請求
					m.logger.Error("fail to send mail",
						slog.String("to", msg.To),
						slog.String("subject", msg.Subject),
						slog.Any("error", err))
					continue
				}
				m.logger.Debug("mail sent", slog.String("to", msg.To))
			}
		}
	}()
}

// Enqueue 將信件排入佇列，佇列已關閉時回傳錯誤
func (m *AsyncMailer) Enqueue(msg Message) error {
	if m.closed {
		return ErrMailerClosed
	}

	select {
	case m.upstream.In <- msg:
		return nil
	case <-m.ctx.Done():
		return ErrMailerClosed
	}
}

// Close 關閉佇列並等待 worker 結束
func (m *AsyncMailer) Close() {
	if m.closed {
		return
	}
	m.logger.Info("closing mailer")
	m.closed = true
	m.cancelFunc()
	m.wg.Wait()
	m.logger.Info("mailer closed")
}
