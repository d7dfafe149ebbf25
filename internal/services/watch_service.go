package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/sentinel/internal/constants"
	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/models"
	"github.com/benmeehan/sentinel/pkg/mqtt"
	"github.com/rs/zerolog"
)

// StatusReader reads one device variable.
type StatusReader interface {
	ReadVariable(ctx context.Context, name string) (device.Value, error)
}

// WatchService polls the device status and reproduces the firmware's alarm
// decision on the client side. Reports are published over MQTT when a client
// is set.
type WatchService struct {
	Reader     StatusReader
	Interval   time.Duration
	PubTopic   string
	QOS        int
	MqttClient mqtt.MQTTClient
	Logger     zerolog.Logger

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatchService initializes a new WatchService. mqttClient may be nil.
func NewWatchService(reader StatusReader, interval time.Duration, pubTopic string, qos int,
	mqttClient mqtt.MQTTClient, logger zerolog.Logger) *WatchService {

	return &WatchService{
		Reader:     reader,
		Interval:   interval,
		PubTopic:   pubTopic,
		QOS:        qos,
		MqttClient: mqttClient,
		Logger:     logger,
		now:        time.Now,
	}
}

// Start polls once immediately and then on every interval, in a separate goroutine.
func (w *WatchService) Start() error {
	if w.ctx != nil {
		w.Logger.Warn().Msg("WatchService is already running")
		return errors.New("watch service is already running")
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runWatchLoop()
	}()

	w.Logger.Info().Dur("interval", w.Interval).Msg("WatchService started successfully")
	return nil
}

// Stop gracefully stops the watch service.
func (w *WatchService) Stop() error {
	if w.ctx == nil {
		w.Logger.Warn().Msg("WatchService is not running")
		return errors.New("watch service is not running")
	}

	w.cancel()
	w.wg.Wait()

	w.ctx = nil
	w.cancel = nil

	w.Logger.Info().Msg("WatchService stopped successfully")
	return nil
}

func (w *WatchService) runWatchLoop() {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.poll(w.ctx)

	for {
		select {
		case <-ticker.C:
			w.poll(w.ctx)
		case <-w.ctx.Done():
			w.Logger.Info().Msg("WatchService stopping gracefully")
			return
		}
	}
}

func (w *WatchService) poll(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
		w.Logger.Error().Err(err).Bool("transient", device.IsTransient(err)).Msg("Status poll failed")
	}
}

// Check reads the status once, logs an alarm the way the firmware words it
// and publishes the report.
func (w *WatchService) Check(ctx context.Context) (models.StatusReport, error) {
	value, err := w.Reader.ReadVariable(ctx, constants.VariableStatus)
	if err != nil {
		return models.StatusReport{}, err
	}

	record := value.Status()
	alarm, armed := EvaluateAlarm(record)
	report := models.StatusReport{
		Timestamp: w.now().UTC(),
		Alarm:     alarm,
		Armed:     armed,
		Status:    record,
	}

	event := w.Logger.Info()
	if alarm && armed {
		event = w.Logger.Warn()
	}
	event.Bool("alarm", alarm).Bool("armed", armed).Msg(AlarmMessage(record))

	return report, w.publish(report)
}

func (w *WatchService) publish(report models.StatusReport) error {
	if w.MqttClient == nil {
		return nil
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	token := w.MqttClient.Publish(w.PubTopic, byte(w.QOS), false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}

	w.Logger.Debug().Str("topic", w.PubTopic).Msg("Status report published successfully")
	return nil
}

// EvaluateAlarm applies the firmware's alarm condition: the device is in
// alarm unless external power and UPS power are both up and the pressure is
// below the configured threshold. A missing field counts against the device.
func EvaluateAlarm(r models.StatusRecord) (alarm bool, armed bool) {
	power, okPower := r.Bool(constants.StatusFieldPower)
	ups, okUPS := r.Bool(constants.StatusFieldUPS)
	pressure, okPressure := r.Number(constants.StatusFieldPressure)
	threshold, okThreshold := r.Number(constants.StatusFieldThreshold)
	armed, _ = r.Bool(constants.StatusFieldArmed)

	healthy := okPower && okUPS && okPressure && okThreshold &&
		power && ups && pressure < threshold
	return !healthy, armed
}

// AlarmMessage formats the status the way the firmware's alarm event does.
func AlarmMessage(r models.StatusRecord) string {
	power, _ := r.Bool(constants.StatusFieldPower)
	ups, _ := r.Bool(constants.StatusFieldUPS)
	pressure, _ := r.Number(constants.StatusFieldPressure)

	return fmt.Sprintf("Power %s, UPS %s, Pressure %.2f mbar", upDown(power), upDown(ups), pressure)
}

func upDown(ok bool) string {
	if ok {
		return "OK"
	}
	return "DOWN"
}
