package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rostved/sitebook/api"
)

// exportCustomers writes clients/clients.json. Clients already in the file
// are kept even when the service no longer lists them.
func exportCustomers(customers []api.Customer, outDir string, dryRun bool) error {
	filename := filepath.Join(outDir, "clients", "clients.json")

	existing, err := loadExistingCustomers(filename)
	if err != nil {
		log.Printf("No existing clients file, creating new one.")
		existing = nil
	}

	merged := mergeCustomers(existing, customers)

	if dryRun {
		log.Printf("[Dry Run] Would save %d clients to %s", len(merged), filename)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal clients: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}
	log.Printf("Saved %d clients to %s", len(merged), filename)
	return nil
}

func loadExistingCustomers(filename string) ([]api.Customer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var customers []api.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// mergeCustomers updates existing clients in place by ID, preserving their
// order, and appends clients not seen before.
func mergeCustomers(existing, current []api.Customer) []api.Customer {
	byID := make(map[string]api.Customer, len(current))
	for _, c := range current {
		if c.ID != "" {
			byID[c.ID] = c
		}
	}

	applied := make(map[string]bool)
	result := make([]api.Customer, 0, len(existing)+len(current))
	for _, c := range existing {
		if changed, ok := byID[c.ID]; ok {
			result = append(result, changed)
			applied[c.ID] = true
		} else {
			result = append(result, c)
		}
	}

	for _, c := range current {
		if !applied[c.ID] {
			result = append(result, c)
			applied[c.ID] = true
		}
	}
	return result
}
