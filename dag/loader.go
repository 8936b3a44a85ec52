package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// PipelineLoader loads a named pipeline definition.
type PipelineLoader interface {
	Load(name string) (*Pipeline, error)
}

// FilePipelineLoader loads pipelines from YAML files on disk, searching
// {name}.yaml and {name}.yml across a set of configured directories
// (including one level of subdirectories).
type FilePipelineLoader struct {
	dirs []string
}

// NewFilePipelineLoader returns a loader that searches dirs for pipeline
// YAML files.
func NewFilePipelineLoader(dirs ...string) *FilePipelineLoader {
	return &FilePipelineLoader{dirs: dirs}
}

// Load implements PipelineLoader.
func (l *FilePipelineLoader) Load(name string) (*Pipeline, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if p, err := loadPipelineFile(path); err == nil {
				return p, nil
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			for _, match := range matches {
				if p, err := loadPipelineFile(match); err == nil {
					return p, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("dag: pipeline %q not found in %v", name, l.dirs)
}

func loadPipelineFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("dag: parsing %s: %w", path, err)
	}
	return &p, nil
}

// ResolvePipeline turns a Pipeline plus a Registry into a GraphConfig
// ready for Compile. Includes are resolved recursively: a circular
// include is a compile-time error, and a sub-pipeline reachable through
// more than one include path (a "diamond") contributes its nodes and
// routes exactly once.
func ResolvePipeline(p *Pipeline, registry *Registry, loader PipelineLoader) (*GraphConfig, error) {
	cfg := NewGraphConfig()
	stack := make(map[string]bool)
	resolved := make(map[string]bool)
	seenNodes := make(map[string]bool)
	if err := resolvePipelineInto(cfg, p, registry, loader, stack, resolved, seenNodes); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePipelineInto(cfg *GraphConfig, p *Pipeline, registry *Registry, loader PipelineLoader, stack, resolved, seenNodes map[string]bool) error {
	if stack[p.Name] {
		return fmt.Errorf("dag: circular include detected for pipeline %q", p.Name)
	}
	stack[p.Name] = true
	defer delete(stack, p.Name)

	for _, includeName := range p.Includes {
		if resolved[includeName] {
			continue // already resolved via a different branch (diamond)
		}
		if loader == nil {
			return fmt.Errorf("dag: pipeline %q includes %q but no loader was configured", p.Name, includeName)
		}
		sub, err := loader.Load(includeName)
		if err != nil {
			return fmt.Errorf("dag: loading include %q: %w", includeName, err)
		}
		if err := resolvePipelineInto(cfg, sub, registry, loader, stack, resolved, seenNodes); err != nil {
			return err
		}
		resolved[includeName] = true
	}

	for _, def := range p.Nodes {
		id := def.Name
		if id == "" {
			id = def.Component
		}
		if seenNodes[id] {
			continue // already added via an earlier include
		}
		seenNodes[id] = true

		processor, ok := registry.Processor(def.Component)
		if !ok {
			return fmt.Errorf("dag: pipeline %q: component %q not found in registry", p.Name, def.Component)
		}

		gov, err := def.Governance.resolve(registry)
		if err != nil {
			return fmt.Errorf("dag: pipeline %q: node %q: %w", p.Name, id, err)
		}
		if gov != nil {
			cfg.AddNodeWithGovernance(id, processor, gov)
		} else {
			cfg.AddNode(id, processor)
		}

		if def.Condition != "" {
			cond, ok := registry.Condition(def.Condition)
			if !ok {
				return fmt.Errorf("dag: pipeline %q: node %q: condition %q not found in registry", p.Name, id, def.Condition)
			}
			cfg.AddNodeCondition(id, cond)
		}

		for _, dep := range def.DependsOn {
			cfg.AddRoute(dep, id)
		}
	}

	resolved[p.Name] = true
	return nil
}
