package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

type apiResp struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type serviceType struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type queueEntry struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	ServiceID     string `json:"service_id"`
	Position      int    `json:"position"`
	Status        string `json:"status"`
	EstimatedWait int    `json:"estimated_wait"`
}

type queueStats struct {
	ServiceID      string  `json:"service_id"`
	WaitingCount   int     `json:"waiting_count"`
	InServiceCount int     `json:"in_service_count"`
	AverageWait    float64 `json:"average_wait"`
}

var (
	addr          = flag.String("addr", "http://localhost:8086", "Service queue base URL")
	numUsers      = flag.Int("users", 40, "Number of guests to enqueue")
	joinRate      = flag.Duration("join-rate", 50*time.Millisecond, "Time between guest joins")
	highRate      = flag.Float64("high-rate", 0.15, "Probability a guest joins with high priority")
	exitRate      = flag.Float64("exit-rate", 0.05, "Probability of a guest leaving per check")
	simulate      = flag.Bool("simulate", false, "Enable continuous simulation with staff working the queues")
	staffInterval = flag.Duration("staff-interval", 3*time.Second, "Interval between staff call-next passes")
)

func main() {
	flag.Parse()
	rand.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	services, err := fetchServices(client)
	if err != nil {
		fmt.Printf("Failed to fetch service types: %v\n", err)
		os.Exit(1)
	}
	if len(services) == 0 {
		fmt.Println("No active service types available")
		os.Exit(1)
	}
	fmt.Printf("✅ Connected to %s (%d active services)\n", *addr, len(services))

	entries := enqueueGuests(client, services)
	fmt.Printf("\n✅ Enqueued %d guests\n", len(entries))

	printStats(client, services)

	if !*simulate {
		fmt.Println("\n💡 Tip: Use --simulate to let virtual staff work the queues")
		return
	}

	fmt.Printf("\n🎬 Starting continuous simulation (staff pass every %v, exit rate %.1f%%)\n",
		*staffInterval, *exitRate*100)
	fmt.Println("   Press Ctrl+C to stop")
	runSimulation(client, services, entries)
}

func fetchServices(client *http.Client) ([]serviceType, error) {
	raw, err := doJSON(client, http.MethodGet, *addr+"/api/v1/services", nil)
	if err != nil {
		return nil, err
	}

	var all []serviceType
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}

	active := all[:0]
	for _, s := range all {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}

func enqueueGuests(client *http.Client, services []serviceType) []queueEntry {
	entries := make([]queueEntry, 0, *numUsers)

	fmt.Printf("\n🚀 Enqueuing %d guests...\n", *numUsers)
	startTime := time.Now()

	for i := 0; i < *numUsers; i++ {
		svc := services[rand.Intn(len(services))]
		priority := "normal"
		if rand.Float64() < *highRate {
			priority = "high"
		}

		body := map[string]any{
			"user_id":    fmt.Sprintf("demo-guest-%d", i+1),
			"user_name":  fmt.Sprintf("Demo Guest %d", i+1),
			"service_id": svc.ID,
			"priority":   priority,
		}

		raw, err := doJSON(client, http.MethodPost, *addr+"/api/v1/queue/join", body)
		if err != nil {
			fmt.Printf("❌ Join failed for guest %d: %v\n", i+1, err)
			continue
		}

		var entry queueEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			fmt.Printf("❌ Bad join response for guest %d: %v\n", i+1, err)
			continue
		}
		entries = append(entries, entry)

		if (i+1)%10 == 0 || i+1 == *numUsers {
			fmt.Printf("   Progress: %d/%d guests enqueued\n", i+1, *numUsers)
		}
		if *joinRate > 0 {
			time.Sleep(*joinRate)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("⏱️  Completed in %v (%.0f joins/sec)\n", elapsed, float64(len(entries))/elapsed.Seconds())

	return entries
}

func printStats(client *http.Client, services []serviceType) {
	fmt.Println("\n📊 Queue stats:")
	for _, svc := range services {
		raw, err := doJSON(client, http.MethodGet, fmt.Sprintf("%s/api/v1/queues/%s/stats", *addr, svc.ID), nil)
		if err != nil {
			fmt.Printf("   %-14s error: %v\n", svc.ID, err)
			continue
		}
		var st queueStats
		if err := json.Unmarshal(raw, &st); err != nil {
			continue
		}
		fmt.Printf("   %-14s waiting=%-3d in_service=%-2d avg_wait=%.0fmin\n",
			svc.ID, st.WaitingCount, st.InServiceCount, st.AverageWait)
	}
}

func runSimulation(client *http.Client, services []serviceType, entries []queueEntry) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var mu sync.Mutex
	active := make(map[string]bool, len(entries))
	for _, e := range entries {
		active[e.ID] = true
	}

	staffTicker := time.NewTicker(*staffInterval)
	defer staffTicker.Stop()
	exitTicker := time.NewTicker(10 * time.Second)
	defer exitTicker.Stop()

	served := 0
	left := 0

	for {
		select {
		case <-staffTicker.C:
			for _, svc := range services {
				entry, err := callNext(client, svc.ID)
				if err != nil || entry == nil {
					continue
				}

				// Walk the entry through its visit.
				time.Sleep(200 * time.Millisecond)
				if _, err := doJSON(client, http.MethodPost,
					fmt.Sprintf("%s/api/v1/entries/%s/start", *addr, entry.ID), nil); err != nil {
					continue
				}
				time.Sleep(200 * time.Millisecond)
				if _, err := doJSON(client, http.MethodPost,
					fmt.Sprintf("%s/api/v1/entries/%s/complete", *addr, entry.ID), nil); err != nil {
					continue
				}

				mu.Lock()
				delete(active, entry.ID)
				mu.Unlock()
				served++
				fmt.Printf("💈 %s served %s\n", svc.ID, entry.UserID)
			}

		case <-exitTicker.C:
			mu.Lock()
			for id := range active {
				if rand.Float64() < *exitRate {
					if _, err := doJSON(client, http.MethodDelete,
						fmt.Sprintf("%s/api/v1/queue/entries/%s", *addr, id), nil); err == nil {
						delete(active, id)
						left++
					}
				}
			}
			mu.Unlock()

		case <-sigChan:
			fmt.Printf("\n🏁 Simulation done: served=%d left=%d\n", served, left)
			printStats(client, services)
			return
		}
	}
}

func callNext(client *http.Client, serviceID string) (*queueEntry, error) {
	raw, err := doJSON(client, http.MethodPost,
		fmt.Sprintf("%s/api/v1/queues/%s/call-next", *addr, serviceID), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var entry queueEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// doJSON performs the request and unwraps the service's response
// envelope. A 404 returns (nil, nil) so callers can treat empty queues
// and vanished entries as non-fatal.
func doJSON(client *http.Client, method, url string, body any) (json.RawMessage, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed apiResp
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: %d %s", method, url, resp.StatusCode, parsed.Message)
	}

	return parsed.Data, nil
}
