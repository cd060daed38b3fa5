// Benchmark tool for load-testing Warden with incident data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/incidents.csv -url http://localhost:8080
//
// This tool:
//  1. Reads labeled incident data (prisoner, behaviorType, severity)
//  2. Admits each distinct prisoner and streams the incidents to Warden
//  3. Fetches the resulting behavior summaries
//  4. Reports throughput, latency, and the score distribution
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// IncidentRow represents a row from the incident dataset.
type IncidentRow struct {
	InmateNumber string
	FirstName    string
	LastName     string
	BehaviorType string
	Severity     string
	Description  string
}

// Metrics tracks benchmark results.
type Metrics struct {
	IncidentsPosted  int64
	SummariesFetched int64
	TotalErrors      int64
	ProcessingTimeMs int64

	mu     sync.Mutex
	scores map[string]int // label -> count
}

func main() {
	csvPath := flag.String("csv", "", "Path to incident CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Warden base URL")
	facilityID := flag.String("facility", "benchmark-facility", "Facility ID for requests")
	limit := flag.Int("limit", 10000, "Maximum incidents to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	verbose := flag.Bool("verbose", false, "Print each request result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/incidents.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║           WARDEN BENCHMARK - Incident Throughput               ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Warden URL:  %s\n", *baseURL)
	fmt.Printf("Facility:    %s\n", *facilityID)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Warden not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Warden is running:")
		fmt.Println("  cd warden && go run cmd/warden/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Warden is healthy")

	client := &http.Client{Timeout: 10 * time.Second}

	token, err := obtainToken(client, *baseURL, *facilityID)
	if err != nil {
		fmt.Printf("ERROR: failed to obtain access token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Access token obtained")

	fmt.Printf("\nReading incident data from %s...\n", *csvPath)
	rows, err := readIncidentCSV(*csvPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d incidents\n", len(rows))

	// Admit each distinct prisoner once
	fmt.Println("\nAdmitting prisoners...")
	prisonerIDs, err := admitPrisoners(client, *baseURL, *facilityID, token, rows)
	if err != nil {
		fmt.Printf("ERROR: Failed to admit prisoners: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Admitted %d prisoners\n", len(prisonerIDs))

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(rows, prisonerIDs, client, *baseURL, *facilityID, token, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// obtainToken registers a throwaway warden account and logs in.
func obtainToken(client *http.Client, baseURL, facilityID string) (string, error) {
	username := fmt.Sprintf("bench-%d", time.Now().UnixNano())
	creds := map[string]string{
		"username": username,
		"password": "benchmark-password",
		"role":     "warden",
	}

	if _, err := postJSON(client, baseURL+"/auth/register", facilityID, "", creds); err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	body, err := postJSON(client, baseURL+"/auth/login", facilityID, "", creds)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	var tokenResp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return tokenResp.AccessToken, nil
}

func readIncidentCSV(path string, limit int) ([]IncidentRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var rows []IncidentRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		row := IncidentRow{
			InmateNumber: record[colIndex["inmatenumber"]],
			BehaviorType: record[colIndex["behaviortype"]],
			Severity:     record[colIndex["severity"]],
		}
		if i, ok := colIndex["firstname"]; ok {
			row.FirstName = record[i]
		}
		if i, ok := colIndex["lastname"]; ok {
			row.LastName = record[i]
		}
		if i, ok := colIndex["description"]; ok {
			row.Description = record[i]
		}

		rows = append(rows, row)

		if limit > 0 && len(rows) >= limit {
			break
		}
	}

	return rows, nil
}

// admitPrisoners creates one prisoner per distinct inmate number and
// returns a map from inmate number to prisoner ID.
func admitPrisoners(client *http.Client, baseURL, facilityID, token string, rows []IncidentRow) (map[string]string, error) {
	prisonerIDs := make(map[string]string)

	for _, row := range rows {
		if _, ok := prisonerIDs[row.InmateNumber]; ok {
			continue
		}

		lastName := row.LastName
		if lastName == "" {
			lastName = "Bench-" + row.InmateNumber
		}

		body, err := postJSON(client, baseURL+"/prisoners", facilityID, token, map[string]any{
			"inmateNumber": row.InmateNumber,
			"firstName":    row.FirstName,
			"lastName":     lastName,
		})
		if err != nil {
			return nil, err
		}

		var prisoner struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &prisoner); err != nil {
			return nil, err
		}
		prisonerIDs[row.InmateNumber] = prisoner.ID
	}

	return prisonerIDs, nil
}

func runBenchmark(rows []IncidentRow, prisonerIDs map[string]string, client *http.Client, baseURL, facilityID, token string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{scores: make(map[string]int)}

	work := make(chan IncidentRow, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for row := range work {
				prisonerID := prisonerIDs[row.InmateNumber]

				start := time.Now()
				_, err := postJSON(client, baseURL+"/prisoners/"+prisonerID+"/incidents", facilityID, token, map[string]any{
					"behaviorType": row.BehaviorType,
					"severity":     row.Severity,
					"description":  row.Description,
				})
				atomic.AddInt64(&metrics.ProcessingTimeMs, time.Since(start).Milliseconds())

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", row.InmateNumber, err)
					}
					continue
				}
				atomic.AddInt64(&metrics.IncidentsPosted, 1)
			}
		}()
	}

	for _, row := range rows {
		work <- row
	}
	close(work)
	wg.Wait()

	// Fetch the resulting summaries
	for inmateNumber, prisonerID := range prisonerIDs {
		body, err := getJSON(client, baseURL+"/prisoners/"+prisonerID+"/behavior-summary", facilityID, token)
		if err != nil {
			atomic.AddInt64(&metrics.TotalErrors, 1)
			continue
		}
		atomic.AddInt64(&metrics.SummariesFetched, 1)

		var summary struct {
			Score int    `json:"score"`
			Label string `json:"label"`
		}
		if err := json.Unmarshal(body, &summary); err != nil {
			continue
		}

		metrics.mu.Lock()
		metrics.scores[summary.Label]++
		metrics.mu.Unlock()

		if verbose {
			fmt.Printf("  %-12s score=%3d label=%s\n", inmateNumber, summary.Score, summary.Label)
		}
	}

	return metrics
}

func postJSON(client *http.Client, url, facilityID, token string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Facility-ID", facilityID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func getJSON(client *http.Client, url, facilityID, token string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Facility-ID", facilityID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                         ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 THROUGHPUT\n")
	fmt.Printf("   Incidents Posted:   %d\n", m.IncidentsPosted)
	fmt.Printf("   Summaries Fetched:  %d\n", m.SummariesFetched)
	fmt.Printf("   Errors:             %d\n", m.TotalErrors)

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.IncidentsPosted > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.IncidentsPosted)
		rps := float64(m.IncidentsPosted) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f incidents/sec\n", rps)
	}

	fmt.Printf("\n🏷️  SCORE DISTRIBUTION\n")
	for _, label := range []string{"exemplary", "good", "fair", "poor", "critical"} {
		if count := m.scores[label]; count > 0 {
			fmt.Printf("   %-10s %d\n", label, count)
		}
	}

	fmt.Println()
}
