package e2e

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/h2cf/app"
	"github.com/kilianp07/h2cf/config"
	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/model"
)

func hourlyInput(hours int) capacity.Input {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, hours)
	flows := make([]float64, hours)
	prices := make([]float64, hours)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
		flows[i] = -80
		if i%24 < 12 {
			prices[i] = 90
		}
	}
	return capacity.Input{
		Flows:  model.FlowSeries{Timestamps: ts, Flows: map[string][]float64{"el1": flows}},
		Units:  []model.Unit{{ID: "el1", Carrier: "H2 Electrolysis", NominalCapacity: model.Float(100), Efficiency: model.Float(0.7)}},
		Prices: &model.PriceSeries{Timestamps: ts, Prices: prices},
	}
}

func TestReportPublishedOverMQTT(t *testing.T) {
	if testing.Short() {
		t.Skip("container test skipped in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker, cleanup, err := StartMosquitto(ctx)
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	defer cleanup()

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-sub"))
	require.NoError(t, waitToken(sub.Connect()))
	defer sub.Disconnect(100)
	require.NoError(t, waitToken(sub.Subscribe("e2e/capacity/#", 1, func(_ paho.Client, m paho.Message) {
		select {
		case received <- m.Payload():
		default:
		}
	})))

	cfg := config.Default()
	cfg.Analysis.MinTurndown = 0.5
	cfg.Analysis.OutageFraction = 0
	cfg.MQTT.Broker = broker
	cfg.MQTT.ClientID = "e2e-pub"
	cfg.MQTT.TopicPrefix = "e2e"
	cfg.MQTT.QoS = 1
	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	rep, err := svc.Run(hourlyInput(48), cfg.Analysis.Params(2020, 1))
	require.NoError(t, err)

	select {
	case payload := <-received:
		var got capacity.Report
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, rep.Metadata.RunID, got.Metadata.RunID)
		res, ok := got.Result("el1")
		require.True(t, ok)
		assert.InDelta(t, 0.8, res.RawCF.Float64, 1e-12)
		assert.InDelta(t, 0.4, res.ConstrainedCF.Float64, 1e-12)
	case <-ctx.Done():
		t.Fatal("report not received")
	}
}

func waitToken(tok paho.Token) error {
	if !tok.WaitTimeout(10 * time.Second) {
		return context.DeadlineExceeded
	}
	return tok.Error()
}
