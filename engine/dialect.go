package engine

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// Dialect names.
const (
	DialectAPI    = "api"
	DialectLegacy = "legacy"
	DialectAuto   = "auto"
)

// dialect maps one route family onto Snapshot.
type dialect interface {
	name() string
	statusPath(instanceID string) string
	decode(body []byte) (*Snapshot, error)
}

type apiDialect struct{}

type apiStatus struct {
	ActiveNodes      []string `json:"activeNodes"`
	CompletedNodes   []string `json:"completedNodes"`
	PendingUserTasks []struct {
		TaskID   string `json:"taskId"`
		NodeID   string `json:"nodeId"`
		TaskName string `json:"taskName"`
	} `json:"pendingUserTasks"`
}

func (apiDialect) name() string { return DialectAPI }

func (apiDialect) statusPath(id string) string {
	return "/api/process/status/" + url.PathEscape(id)
}

func (apiDialect) decode(body []byte) (*Snapshot, error) {
	if err := requireObject(body); err != nil {
		return nil, err
	}
	var p apiStatus
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	s := &Snapshot{
		ActiveNodes:    orEmpty(p.ActiveNodes),
		CompletedNodes: orEmpty(p.CompletedNodes),
		Tasks:          make([]Task, 0, len(p.PendingUserTasks)),
		Dialect:        DialectAPI,
	}
	for _, t := range p.PendingUserTasks {
		s.Tasks = append(s.Tasks, Task{ID: t.TaskID, NodeID: t.NodeID, Name: t.TaskName})
	}
	return s, nil
}

type legacyDialect struct{}

type legacyStatus struct {
	ActiveTasks []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		NodeID string `json:"nodeId"`
	} `json:"activeTasks"`
	CompletedActivities []string `json:"completedActivities"`
	CurrentActivity     string   `json:"currentActivity"`
}

func (legacyDialect) name() string { return DialectLegacy }

func (legacyDialect) statusPath(id string) string {
	return "/process/status/" + url.PathEscape(id)
}

// decode treats the node of every active task as active, plus the
// current activity when present.
func (legacyDialect) decode(body []byte) (*Snapshot, error) {
	if err := requireObject(body); err != nil {
		return nil, err
	}
	var p legacyStatus
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	s := &Snapshot{
		ActiveNodes:     make([]string, 0, len(p.ActiveTasks)+1),
		CompletedNodes:  orEmpty(p.CompletedActivities),
		Tasks:           make([]Task, 0, len(p.ActiveTasks)),
		CurrentActivity: p.CurrentActivity,
		Dialect:         DialectLegacy,
	}
	for _, t := range p.ActiveTasks {
		s.Tasks = append(s.Tasks, Task{ID: t.ID, NodeID: t.NodeID, Name: t.Name})
		if t.NodeID != "" {
			s.ActiveNodes = append(s.ActiveNodes, t.NodeID)
		}
	}
	if p.CurrentActivity != "" {
		s.ActiveNodes = append(s.ActiveNodes, p.CurrentActivity)
	}
	return s, nil
}

// sniff picks the dialect whose keys appear in body.
func sniff(body []byte) (dialect, error) {
	if err := requireObject(body); err != nil {
		return nil, err
	}
	keys := gjson.GetManyBytes(body,
		"activeNodes", "pendingUserTasks", "completedNodes",
		"activeTasks", "completedActivities", "currentActivity",
	)
	switch {
	case keys[0].Exists() || keys[1].Exists() || keys[2].Exists():
		return apiDialect{}, nil
	case keys[3].Exists() || keys[4].Exists() || keys[5].Exists():
		return legacyDialect{}, nil
	}
	return nil, fmt.Errorf("unrecognised status payload")
}

func dialectByName(name string) (dialect, error) {
	switch name {
	case "", DialectAPI:
		return apiDialect{}, nil
	case DialectLegacy:
		return legacyDialect{}, nil
	case DialectAuto:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown engine dialect %q", name)
}

func requireObject(body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("invalid JSON")
	}
	if !gjson.ParseBytes(body).IsObject() {
		return fmt.Errorf("expected a JSON object")
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
