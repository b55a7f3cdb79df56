package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xiaot623/devteam/internal/domain"
)

// DefaultTeam returns the stock engineering team configuration. The first
// four stages are the core pipeline; the trailing ones ship disabled and
// can be switched on through reconfiguration.
func DefaultTeam() []domain.StageDefinition {
	return []domain.StageDefinition{
		{
			ID:          "design",
			Title:       "Technical Design",
			AgentName:   "ChAIrlie",
			Icon:        "📐",
			Description: "Produces the technical design from the requirements",
			Enabled:     true,
		},
		{
			ID:          "backend_code",
			Title:       "Backend Code",
			AgentName:   "Jimmy Backend",
			Icon:        "⚙️",
			Description: "Implements the backend against the design",
			Enabled:     true,
		},
		{
			ID:          "frontend_code",
			Title:       "Frontend Code",
			AgentName:   "Wally WebDev",
			Icon:        "🎨",
			Description: "Implements the user interface",
			Enabled:     true,
		},
		{
			ID:          "tests",
			Title:       "Test Suite",
			AgentName:   "Bug Zapper",
			Icon:        "🧪",
			Description: "Writes tests for the generated code",
			Enabled:     true,
		},
		{
			ID:          "documentation",
			Title:       "Documentation",
			AgentName:   "Doc Holiday",
			Icon:        "📝",
			Description: "Documents the generated application",
			Enabled:     false,
		},
		{
			ID:          "security_audit",
			Title:       "Security Audit",
			AgentName:   "Gate Keeper",
			Icon:        "🔒",
			Description: "Reviews the generated code for security issues",
			Enabled:     false,
		},
	}
}

// teamFile is the YAML shape of an external team configuration file.
type teamFile struct {
	Stages []domain.StageDefinition `yaml:"stages"`
}

// LoadTeamFile reads stage definitions from a YAML file. Used at startup
// when TEAM_CONFIG_PATH points at a team file; otherwise the stock team is
// used.
func LoadTeamFile(path string) ([]domain.StageDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read team file: %w", err)
	}

	var tf teamFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse team file: %w", err)
	}
	if err := validate(tf.Stages); err != nil {
		return nil, err
	}
	return tf.Stages, nil
}
