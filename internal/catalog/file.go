// internal/catalog/file.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"booking-dialogue/internal/common/validation"
	"booking-dialogue/internal/models"
)

const (
	assistantFile      = "assistant.json"
	defaultPricingFile = "pricing.json"
	defaultDataFile    = "data.json"
)

// FileSource reads agents from <Dir>/<agentType>/assistant.json and the
// pricing and data files it names.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Load(_ context.Context, agentType string) (*models.Agent, error) {
	return LoadAgent(s.Dir, agentType)
}

func (s *FileSource) AgentTypes(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var types []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Dir, entry.Name(), assistantFile)); err == nil {
			types = append(types, entry.Name())
		}
	}
	sort.Strings(types)
	return types, nil
}

// LoadAgent reads one agent directory. Missing pricing or data files yield
// an empty catalog; a missing or empty assistant.json is ErrAgentNotFound.
func LoadAgent(dir, agentType string) (*models.Agent, error) {
	if !validAgentType(agentType) {
		return nil, fmt.Errorf("%w: %q", ErrAgentNotFound, agentType)
	}
	agentDir := filepath.Join(dir, agentType)

	raw, err := readOptional(filepath.Join(agentDir, assistantFile))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentType)
	}
	if err := validate(validation.AssistantSchema, raw, assistantFile); err != nil {
		return nil, err
	}

	var agent models.Agent
	if err := json.Unmarshal(raw, &agent); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAgent, assistantFile, err)
	}
	agent.Type = agentType

	pricingFile := agent.PricingFile
	if pricingFile == "" {
		pricingFile = defaultPricingFile
	}
	agent.Pricing = &models.PricingCatalog{}
	if raw, err = readOptional(filepath.Join(agentDir, pricingFile)); err != nil {
		return nil, err
	} else if raw != nil {
		if err := validate(validation.PricingSchema, raw, pricingFile); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, agent.Pricing); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAgent, pricingFile, err)
		}
	}

	dataFile := agent.DataFile
	if dataFile == "" {
		dataFile = defaultDataFile
	}
	agent.Data = models.Inventory{}
	if raw, err = readOptional(filepath.Join(agentDir, dataFile)); err != nil {
		return nil, err
	} else if raw != nil {
		if err := validate(validation.InventorySchema, raw, dataFile); err != nil {
			return nil, err
		}
		var vehicles map[string][]models.Vehicle
		if err := json.Unmarshal(raw, &vehicles); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAgent, dataFile, err)
		}
		agent.Data = canonicalInventory(vehicles)
	}

	return &agent, nil
}

// ListAgents returns the summaries of every active agent under dir.
func ListAgents(dir string) ([]models.AgentSummary, error) {
	src := NewFileSource(dir)
	types, err := src.AgentTypes(context.Background())
	if err != nil {
		return nil, err
	}

	summaries := make([]models.AgentSummary, 0, len(types))
	for _, typ := range types {
		agent, err := LoadAgent(dir, typ)
		if err != nil {
			return nil, err
		}
		if agent.IsActive {
			summaries = append(summaries, agent.Summary())
		}
	}
	return summaries, nil
}

// readOptional returns nil for missing or blank files.
func readOptional(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	return raw, nil
}

func validate(schema string, raw []byte, name string) error {
	result, err := validation.ValidateJSON(schema, raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAgent, name, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s: %s", ErrInvalidAgent, name, strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
