package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/relvacode/iso8601"
)

// Topic suffixes below the configured prefix.
const (
	TopicPriority   = "action/priority"
	TopicInhibition = "action/inhibition"
	TopicAffect     = "affect"
	TopicMotivation = "motivation"
	TopicTime       = "time"
	topicVision     = "vision/"
)

// FrameTopic returns the topic suffix for a vision channel, e.g. "vision/priority-left".
func FrameTopic(id FrameID) string {
	return topicVision + strcase.ToKebab(string(id))
}

type MQTTConfig struct {
	// Broker is host:port, optionally prefixed with tcp://.
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	KeepAlive   time.Duration
}

// MQTTSource subscribes to the robot's telemetry topics and writes every
// decoded message into its Cache.
type MQTTSource struct {
	*Cache

	cfg    MQTTConfig
	log    *slog.Logger
	frames map[string]FrameID
}

func NewMQTTSource(cfg MQTTConfig, cache *Cache, log *slog.Logger) *MQTTSource {
	if cfg.ClientID == "" {
		cfg.ClientID = "mirodash-" + uuid.NewString()[:8]
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 30 * time.Second
	}
	cfg.TopicPrefix = strings.Trim(cfg.TopicPrefix, "/")
	if log == nil {
		log = slog.Default()
	}
	frames := make(map[string]FrameID, len(FrameIDs))
	for _, id := range FrameIDs {
		frames[FrameTopic(id)] = id
	}
	return &MQTTSource{
		Cache:  cache,
		cfg:    cfg,
		log:    log.With("component", "mqtt"),
		frames: frames,
	}
}

// Run keeps a subscription open until ctx is done, reconnecting with
// exponential backoff after connection loss.
func (m *MQTTSource) Run(ctx context.Context) error {
	const minBackoff, maxBackoff = time.Second / 8, 30 * time.Second
	backoff := minBackoff
	for {
		connected, err := m.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = minBackoff
		}
		m.log.Warn("telemetry connection lost", "broker", m.cfg.Broker, "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// session runs one connection until it drops or ctx ends.
func (m *MQTTSource) session(ctx context.Context) (connected bool, err error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", strings.TrimPrefix(m.cfg.Broker, "tcp://"))
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", m.cfg.Broker, err)
	}

	lost := make(chan error, 1)
	signal := func(err error) {
		select {
		case lost <- err:
		default:
		}
	}

	c := paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: m.cfg.ClientID,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(pr paho.PublishReceived) (bool, error) {
				if err := m.Handle(pr.Packet.Topic, pr.Packet.Payload); err != nil {
					m.log.Warn("dropping telemetry message", "topic", pr.Packet.Topic, "error", err)
				}
				return true, nil
			},
		},
		OnClientError: func(err error) { signal(err) },
		OnServerDisconnect: func(d *paho.Disconnect) {
			signal(fmt.Errorf("server disconnect, reason %d", d.ReasonCode))
		},
	})

	ca, err := c.Connect(ctx, &paho.Connect{
		ClientID:     m.cfg.ClientID,
		CleanStart:   true,
		KeepAlive:    uint16(m.cfg.KeepAlive.Seconds()),
		Username:     m.cfg.Username,
		UsernameFlag: m.cfg.Username != "",
		Password:     []byte(m.cfg.Password),
		PasswordFlag: m.cfg.Password != "",
	})
	if err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("connect: %w", err)
	}
	if ca.ReasonCode != 0 {
		_ = conn.Close()
		return false, fmt.Errorf("connect refused, reason %d", ca.ReasonCode)
	}

	filter := "#"
	if m.cfg.TopicPrefix != "" {
		filter = m.cfg.TopicPrefix + "/#"
	}
	if _, err := c.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: filter, QoS: 0}},
	}); err != nil {
		_ = c.Disconnect(&paho.Disconnect{})
		return true, fmt.Errorf("subscribe %s: %w", filter, err)
	}
	m.log.Info("subscribed to telemetry", "broker", m.cfg.Broker, "filter", filter, "client_id", m.cfg.ClientID)

	select {
	case <-ctx.Done():
		_ = c.Disconnect(&paho.Disconnect{})
		return true, ctx.Err()
	case err := <-lost:
		_ = conn.Close()
		return true, err
	}
}

type vectorMsg struct {
	Data []float64 `json:"data"`
}

type affectMsg struct {
	Emotion *struct {
		Valence float64 `json:"valence"`
		Arousal float64 `json:"arousal"`
	} `json:"emotion"`
	Mood *struct {
		Valence float64 `json:"valence"`
		Arousal float64 `json:"arousal"`
	} `json:"mood"`
	Sleep *struct {
		Wakefulness float64 `json:"wakefulness"`
		Pressure    float64 `json:"pressure"`
	} `json:"sleep"`
}

type timeMsg struct {
	Hour      *int   `json:"hour"`
	Timestamp string `json:"timestamp"`
}

// Handle decodes one message and stores it. Unknown topics are ignored. A
// malformed payload leaves the channel's previous value in place.
func (m *MQTTSource) Handle(topic string, payload []byte) error {
	suffix := topic
	if m.cfg.TopicPrefix != "" {
		var ok bool
		suffix, ok = strings.CutPrefix(topic, m.cfg.TopicPrefix+"/")
		if !ok {
			return nil
		}
	}

	switch suffix {
	case TopicPriority, TopicInhibition, TopicMotivation:
		var v vectorMsg
		if err := json.Unmarshal(payload, &v); err != nil {
			return fmt.Errorf("%s: %w", suffix, err)
		}
		if v.Data == nil {
			return fmt.Errorf("%s: missing data", suffix)
		}
		switch suffix {
		case TopicPriority:
			m.SetActionPriority(v.Data)
		case TopicInhibition:
			m.SetActionInhibition(v.Data)
		default:
			m.SetDrives(v.Data)
		}
	case TopicAffect:
		var v affectMsg
		if err := json.Unmarshal(payload, &v); err != nil {
			return fmt.Errorf("%s: %w", suffix, err)
		}
		var a Affect
		if v.Emotion != nil {
			a.Emotion = &Pair{X: v.Emotion.Valence, Y: v.Emotion.Arousal}
		}
		if v.Mood != nil {
			a.Mood = &Pair{X: v.Mood.Valence, Y: v.Mood.Arousal}
		}
		if v.Sleep != nil {
			a.Sleep = &Pair{X: v.Sleep.Wakefulness, Y: v.Sleep.Pressure}
		}
		m.SetAffect(a)
	case TopicTime:
		var v timeMsg
		if err := json.Unmarshal(payload, &v); err != nil {
			return fmt.Errorf("%s: %w", suffix, err)
		}
		switch {
		case v.Hour != nil:
			m.SetHour(*v.Hour)
		case v.Timestamp != "":
			ts, err := iso8601.ParseString(v.Timestamp)
			if err != nil {
				return fmt.Errorf("%s: %w", suffix, err)
			}
			m.SetHour(ts.Hour())
		default:
			return errors.New("time: neither hour nor timestamp set")
		}
	default:
		id, ok := m.frames[suffix]
		if !ok {
			return nil
		}
		img, _, err := image.Decode(bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("%s: %w", suffix, err)
		}
		m.SetFrame(id, img)
	}
	return nil
}
