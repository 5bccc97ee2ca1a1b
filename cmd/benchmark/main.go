// Load generator for the wallet API. Sets up a pool of funded wallets over
// HTTP, then hammers the transfer endpoint with idempotency keys and reports
// throughput plus conflict rates.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
	walletCount int
)

var (
	totalRequests uint64
	success200    uint64 // Idempotent replays
	success201    uint64 // Created
	fail409       uint64 // Conflicts
	fail422       uint64 // Rejections (insufficient funds etc.)
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
	flag.IntVar(&walletCount, "wallets", 50, "Number of wallets to set up")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	wallets, err := setupWallets()
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	log.Printf("Set up %d funded wallets", len(wallets))

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, wallets)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// setupWallets onboards users and funds each wallet through the public API,
// so the benchmark exercises the same paths as real traffic.
func setupWallets() ([]string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	wallets := make([]string, 0, walletCount)
	runID := time.Now().UnixNano()

	for i := 0; i < walletCount; i++ {
		userBody, _ := json.Marshal(map[string]any{
			"email":      fmt.Sprintf("bench-%d-%d@example.com", runID, i),
			"first_name": "Bench",
			"last_name":  fmt.Sprintf("User%d", i),
			"currency":   "NGN",
		})
		resp, err := client.Post(targetURL+"/api/v1/users", "application/json", bytes.NewReader(userBody))
		if err != nil {
			return nil, err
		}
		var created struct {
			Wallet struct {
				ID string `json:"id"`
			} `json:"wallet"`
		}
		err = json.NewDecoder(resp.Body).Decode(&created)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if created.Wallet.ID == "" {
			return nil, fmt.Errorf("user setup returned status %d", resp.StatusCode)
		}

		fundBody, _ := json.Marshal(map[string]any{
			"wallet_id": created.Wallet.ID,
			"amount":    "10000.00",
			"provider":  "bench",
		})
		req, _ := http.NewRequest("POST", targetURL+"/api/v1/fundings", bytes.NewReader(fundBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", fmt.Sprintf("bench-setup-%d-%d", runID, i))
		resp, err = client.Do(req)
		if err != nil {
			return nil, err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("funding setup returned status %d", resp.StatusCode)
		}

		wallets = append(wallets, created.Wallet.ID)
	}
	return wallets, nil
}

func worker(wg *sync.WaitGroup, start time.Time, wallets []string) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		sender, receiver := pickPair(wallets)
		key := fmt.Sprintf("bench-%s-%s-%d", sender, receiver, time.Now().UnixNano())

		payload := map[string]any{
			"sender_wallet_id":   sender,
			"receiver_wallet_id": receiver,
			"amount":             "1.00",
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/api/v1/transfers", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", key)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&success201, 1)
		case 200:
			atomic.AddUint64(&success200, 1)
		case 409:
			atomic.AddUint64(&fail409, 1)
		case 422:
			atomic.AddUint64(&fail422, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func pickPair(wallets []string) (string, string) {
	if workload == "hotspot" && len(wallets) >= 2 {
		// Hotspot: 90% of traffic bounces between the first two wallets.
		if rand.Float32() < 0.90 {
			if rand.Float32() < 0.5 {
				return wallets[0], wallets[1]
			}
			return wallets[1], wallets[0]
		}
	}

	a := rand.Intn(len(wallets))
	b := rand.Intn(len(wallets))
	for a == b {
		b = rand.Intn(len(wallets))
	}
	return wallets[a], wallets[b]
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	s200 := atomic.LoadUint64(&success200)
	f409 := atomic.LoadUint64(&fail409)
	f422 := atomic.LoadUint64(&fail422)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	abortRate := 0.0
	if total > 0 {
		abortRate = float64(f409) / float64(total) * 100
	}

	results := map[string]any{
		"workload":        workload,
		"duration_sec":    d.Seconds(),
		"total_requests":  total,
		"throughput_tps":  tps,
		"success_created": s201,
		"success_replay":  s200,
		"aborts_conflict": f409,
		"rejected":        f422,
		"abort_rate_pct":  abortRate,
		"errors":          fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
