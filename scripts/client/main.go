package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publishes sample readings over MQTT, a few of them malformed, then prints
// what the query service reports.
func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	topic := flag.String("topic", "sensors/telemetry", "topic to publish to")
	apiURL := flag.String("api", "http://localhost:8000", "query service base URL")
	count := flag.Int("count", 10, "number of valid readings to publish")
	flag.Parse()

	client := paho.NewClient(paho.NewClientOptions().
		AddBroker(*broker).
		SetClientID("telemetry-client-" + gofakeit.LetterN(6)))
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
	defer client.Disconnect(250)

	devices := []string{"device-" + gofakeit.LetterN(4), "device-" + gofakeit.LetterN(4)}
	base := time.Now().UTC().Add(-time.Hour)

	var payloads [][]byte
	for i := 0; i < *count; i++ {
		p, _ := json.Marshal(map[string]any{
			"device_id":    devices[i%len(devices)],
			"sensor_type":  gofakeit.RandomString([]string{"temperature", "humidity", "pressure"}),
			"sensor_value": gofakeit.Float64Range(-20, 120),
			"timestamp":    base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		payloads = append(payloads, p)
	}
	payloads = append(payloads,
		[]byte(`not-a-json`),
		[]byte(`{"device_id":"`+devices[0]+`","sensor_value":1,"timestamp":"2024-01-01T00:00:00Z"}`),
		[]byte(`{"device_id":"`+devices[0]+`","sensor_type":"temperature","sensor_value":"hot","timestamp":"2024-01-01T00:00:00Z"}`),
	)

	for _, p := range payloads {
		token := client.Publish(*topic, 1, false, p)
		token.Wait()
		if err := token.Error(); err != nil {
			fmt.Println("Publish failed:", err)
			continue
		}
		fmt.Println("Published:", string(p))
	}

	time.Sleep(2 * time.Second)

	for _, path := range []string{"/devices", "/events/" + devices[0], "/events/unknown-device"} {
		resp, err := http.Get(*apiURL + path)
		if err != nil {
			panic(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("GET %s %s\n%s\n", path, resp.Status, string(body))
	}
}
