// Package schema checks policy and schedule documents against embedded JSON
// Schemas before they are decoded.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

var (
	//go:embed server_policy.schema.json
	serverPolicySchema []byte

	//go:embed schedule_form.schema.json
	scheduleFormSchema []byte
)

// ValidationError lists the failed schema keywords
type ValidationError struct {
	Schema string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s schema validation failed: %s", e.Schema, strings.Join(e.Issues, "; "))
}

type compiled struct {
	name   string
	source []byte
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

func (c *compiled) get() (*jsonschema.Schema, error) {
	c.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		c.schema, c.err = compiler.Compile(c.source)
		if c.err != nil {
			c.err = fmt.Errorf("compile %s schema: %w", c.name, c.err)
		}
	})
	return c.schema, c.err
}

func (c *compiled) validate(data []byte) error {
	schema, err := c.get()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors))
	for keyword, e := range result.Errors {
		issues = append(issues, fmt.Sprintf("%s: %v", keyword, e))
	}
	sort.Strings(issues)
	return &ValidationError{Schema: c.name, Issues: issues}
}

var (
	serverPolicy = &compiled{name: "server policy", source: serverPolicySchema}
	scheduleForm = &compiled{name: "schedule form", source: scheduleFormSchema}
)

// ValidateServerPolicy checks a JSON ServerPolicy document
func ValidateServerPolicy(data []byte) error {
	return serverPolicy.validate(data)
}

// ValidateScheduleForm checks a JSON ScheduleFormParameters document
func ValidateScheduleForm(data []byte) error {
	return scheduleForm.validate(data)
}
