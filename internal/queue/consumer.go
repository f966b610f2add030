package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// ActivityConsumer drains the slot.activity queue into an append-only
// log file, one line per event.
type ActivityConsumer struct {
    URL     string
    LogPath string
    Logger  *zap.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures are retried with exponential backoff capped at 30s, and a
// closed delivery channel triggers a reconnect, so a broker outage never
// takes the web server down.
func (c *ActivityConsumer) Run(ctx context.Context) error {
    logger := c.Logger
    if logger == nil {
        logger = zap.NewNop()
    }
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            logger.Warn("activity consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn, logger)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warn("activity consumer: loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *ActivityConsumer) consume(ctx context.Context, conn *amqp.Connection, logger *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warn("activity consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ActivityQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.Body); err != nil {
                logger.Warn("activity consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // drop, requeueing a poison message loops forever
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends it to the log file.
func (c *ActivityConsumer) Handle(body []byte) error {
    var ev SlotActivityEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Action == "" || ev.SlotID == "" {
        return errors.New("event without action or slot id")
    }
    if dir := filepath.Dir(c.LogPath); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders an event as a single human-readable log line.
func FormatLine(ev SlotActivityEvent) string {
    actor := ev.ActorID
    if ev.ActorName != "" {
        actor = fmt.Sprintf("%s (%s)", ev.ActorName, ev.ActorID)
    }
    return fmt.Sprintf("[%s] Slot %s | slot_id=%s | date=%s | start=%s | end=%s | status=%s | actor=%q\n",
        ev.OccurredAt, ev.Action, ev.SlotID, ev.Date, ev.StartTime, ev.EndTime, ev.Status, actor)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
