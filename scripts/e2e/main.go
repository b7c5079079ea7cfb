package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/segmentio/kafka-go"
)

// Steps:
// 1. Generate readings for a handful of devices, shuffled so some arrive out of order
// 2. Publish them plus some invalid payloads to the Kafka topic
// 3. Wait for the ingest service to process them
// 4. Check /events/{device_id} returns every reading newest first
// 5. Check /devices reports the newest timestamp as last_seen

type reading struct {
	DeviceID    string  `json:"device_id"`
	SensorType  string  `json:"sensor_type"`
	SensorValue float64 `json:"sensor_value"`
	Timestamp   string  `json:"timestamp"`
}

type storedEvent struct {
	EventID   int64  `json:"event_id"`
	DeviceID  string `json:"device_id"`
	Timestamp string `json:"timestamp"`
}

type device struct {
	DeviceID string `json:"device_id"`
	LastSeen string `json:"last_seen"`
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka broker")
	topic := flag.String("topic", "sensor-telemetry", "Kafka topic")
	apiURL := flag.String("api", "http://localhost:8000", "query service base URL")
	wait := flag.Duration("wait", 30*time.Second, "time to wait for ingestion")
	flag.Parse()

	faker := gofakeit.New(time.Now().UnixNano())
	base := time.Now().UTC().Truncate(time.Second).Add(-24 * time.Hour)

	expected := make(map[string][]reading)
	var readings []reading
	for d := 0; d < 3; d++ {
		id := fmt.Sprintf("e2e-%s", faker.LetterN(8))
		for i := 0; i < 5; i++ {
			r := reading{
				DeviceID:    id,
				SensorType:  faker.RandomString([]string{"temperature", "humidity"}),
				SensorValue: faker.Float64Range(0, 100),
				Timestamp:   base.Add(time.Duration(d*100+i) * time.Minute).Format(time.RFC3339),
			}
			readings = append(readings, r)
			expected[id] = append(expected[id], r)
		}
	}
	faker.ShuffleAnySlice(readings)

	writer := &kafka.Writer{
		Addr:  kafka.TCP(*brokers),
		Topic: *topic,
	}
	defer writer.Close()

	var messages []kafka.Message
	for _, r := range readings {
		value, _ := json.Marshal(r)
		messages = append(messages, kafka.Message{Value: value})
	}
	messages = append(messages,
		kafka.Message{Value: []byte(`{"device_id":`)},
		kafka.Message{Value: []byte(`{"device_id":"e2e-invalid","sensor_type":"temperature","sensor_value":1}`)},
	)

	if err := writer.WriteMessages(context.Background(), messages...); err != nil {
		panic(fmt.Errorf("failed to write messages: %w", err))
	}
	fmt.Printf("Published %d messages to Kafka topic '%s'\n", len(messages), *topic)

	time.Sleep(*wait)

	for _, want := range expected {
		sort.Slice(want, func(i, j int) bool { return want[i].Timestamp > want[j].Timestamp })
	}

	failures := 0
	for id, want := range expected {
		var got []storedEvent
		if err := getJSON(*apiURL+"/events/"+id, &got); err != nil {
			fmt.Printf("Error fetching events for %s: %v\n", id, err)
			failures++
			continue
		}
		if len(got) != len(want) {
			fmt.Printf("Event count mismatch for %s: expected %d, got %d\n", id, len(want), len(got))
			failures++
			continue
		}
		for i := range want {
			if !sameInstant(got[i].Timestamp, want[i].Timestamp) {
				fmt.Printf("Order mismatch for %s at %d: expected %s, got %s\n", id, i, want[i].Timestamp, got[i].Timestamp)
				failures++
				break
			}
		}
	}

	var devices []device
	if err := getJSON(*apiURL+"/devices", &devices); err != nil {
		panic(err)
	}
	for _, d := range devices {
		want, ok := expected[d.DeviceID]
		if !ok {
			continue
		}
		if !sameInstant(d.LastSeen, want[0].Timestamp) {
			fmt.Printf("last_seen mismatch for %s: expected %s, got %s\n", d.DeviceID, want[0].Timestamp, d.LastSeen)
			failures++
		}
	}

	if err := getJSON(*apiURL+"/events/e2e-invalid", &[]storedEvent{}); err == nil {
		fmt.Println("Invalid payload was stored")
		failures++
	}

	if failures > 0 {
		fmt.Printf("E2E test failed with %d failures\n", failures)
		os.Exit(1)
	}
	fmt.Println("E2E test completed")
}

func getJSON(url string, v any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, v)
}

func sameInstant(a, b string) bool {
	ta, err1 := time.Parse(time.RFC3339Nano, a)
	tb, err2 := time.Parse(time.RFC3339Nano, b)
	return err1 == nil && err2 == nil && ta.Equal(tb)
}
