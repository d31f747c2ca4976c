package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/janekbaraniewski/usagescan/internal/version"
)

// LiteLLMURL is the public LiteLLM price table.
const LiteLLMURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

const maxFeedSize = 64 * 1024 * 1024

var ErrEmptyTable = errors.New("price feed contained no priced models")

// Source says where the price table comes from. File wins over URL when both
// are set.
type Source struct {
	URL     string
	File    string
	Timeout time.Duration
}

func DefaultSource() Source {
	return Source{URL: LiteLLMURL, Timeout: 30 * time.Second}
}

// Load reads the table from src. It never fails: any error is logged and
// yields an empty table so cost estimation degrades to zero.
func Load(ctx context.Context, src Source) Table {
	var (
		table Table
		err   error
	)
	if file := strings.TrimSpace(src.File); file != "" {
		table, err = ReadFile(file)
	} else {
		url := strings.TrimSpace(src.URL)
		if url == "" {
			url = LiteLLMURL
		}
		table, err = Fetch(ctx, &http.Client{Timeout: src.Timeout}, url)
	}
	if err != nil {
		log.Printf("pricing: %v", err)
		return Table{}
	}
	return table
}

// Fetch downloads and parses a LiteLLM-format price table.
func Fetch(ctx context.Context, client *http.Client, url string) (Table, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch price feed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("read price feed: %w", err)
	}
	return Parse(body)
}

// ReadFile parses a price table stored on disk in LiteLLM format.
func ReadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a LiteLLM price document. Entries that are not objects or
// carry neither an input nor an output rate are dropped.
func Parse(data []byte) (Table, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode price feed: %w", err)
	}

	table := make(Table, len(raw))
	for key, entryRaw := range raw {
		var entry map[string]any
		if err := json.Unmarshal(entryRaw, &entry); err != nil || entry == nil {
			continue
		}
		info := Info{
			InputCostPerToken:       rate(entry, "input_cost_per_token"),
			OutputCostPerToken:      rate(entry, "output_cost_per_token"),
			CacheReadCostPerToken:   rate(entry, "cache_read_input_token_cost"),
			CacheWriteCostPerToken:  rate(entry, "cache_creation_input_token_cost"),
			InputCostAbove200k:      rate(entry, "input_cost_per_token_above_200k_tokens"),
			OutputCostAbove200k:     rate(entry, "output_cost_per_token_above_200k_tokens"),
			CacheReadCostAbove200k:  rate(entry, "cache_read_input_token_cost_above_200k_tokens"),
			CacheWriteCostAbove200k: rate(entry, "cache_creation_input_token_cost_above_200k_tokens"),
		}
		if info.InputCostPerToken == 0 && info.OutputCostPerToken == 0 {
			continue
		}
		table[key] = info
	}
	if len(table) == 0 {
		return table, ErrEmptyTable
	}
	return table, nil
}

func rate(entry map[string]any, key string) float64 {
	if v, ok := entry[key].(float64); ok {
		return v
	}
	return 0
}
