//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/patrolsim/core/metrics"
)

// TestPublisherIntegration publishes a run record through a real Mosquitto broker.
func TestPublisherIntegration(t *testing.T) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:1.6",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	if tok := sub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	defer sub.Disconnect(250)
	got := make(chan []byte, 1)
	if tok := sub.Subscribe("it/runs", 1, func(_ paho.Client, m paho.Message) { got <- m.Payload() }); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	pub, err := NewPublisher(Config{Broker: broker, ClientID: "pub", TopicPrefix: "it", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer func() { _ = pub.Flush() }()
	if err := pub.RecordRun(coremetrics.RunRecord{RunID: "it-1", Mishandled: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}

	select {
	case payload := <-got:
		var rec coremetrics.RunRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rec.RunID != "it-1" || rec.Mishandled != 2 {
			t.Fatalf("unexpected record %+v", rec)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for message")
	}
}
