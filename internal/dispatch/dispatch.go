// Package dispatch publishes committed trajectories to robots over MQTT.
//
// Each agent's path goes to warehouse/<map>/agents/<agent>/path as JSON. Steps are
// listed per tick, so a repeated position is a wait.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdatta1/PathRouting/internal/algo"
	"github.com/pdatta1/PathRouting/internal/core"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber delivers payloads published on a topic filter.
type Subscriber interface {
	Subscribe(topic string, fn func(topic string, payload []byte)) error
}

// Step is one tick of a dispatched trajectory.
type Step struct {
	Tick int    `json:"tick"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Type string `json:"type"`
	Node string `json:"node"`
}

// PathMessage is the payload published for one agent.
type PathMessage struct {
	MapID      string `json:"map_id"`
	Agent      string `json:"agent"`
	StartTick  int    `json:"start_tick"`
	EndTick    int    `json:"end_tick"`
	ComputedUS int64  `json:"computed_us"`
	Steps      []Step `json:"steps"`
}

// Topic returns the topic an agent's path is published on.
func Topic(mapID uuid.UUID, agent string) string {
	return fmt.Sprintf("warehouse/%s/agents/%s/path", mapID, agent)
}

// NewPathMessage converts a committed path.
func NewPathMessage(mapID uuid.UUID, agent string, p *core.Path) PathMessage {
	msg := PathMessage{
		MapID:      mapID.String(),
		Agent:      agent,
		StartTick:  p.StartTick,
		EndTick:    p.EndTick(),
		ComputedUS: p.Duration.Microseconds(),
		Steps:      make([]Step, 0, len(p.Nodes)),
	}
	for i, n := range p.Nodes {
		msg.Steps = append(msg.Steps, Step{
			Tick: p.StartTick + i,
			X:    n.Coords.X,
			Y:    n.Coords.Y,
			Z:    n.Coords.Z,
			Type: n.Type.String(),
			Node: n.ID.String(),
		})
	}
	return msg
}

// DecodePathMessage parses a payload published by PathDispatcher.
func DecodePathMessage(payload []byte) (PathMessage, error) {
	var msg PathMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return PathMessage{}, fmt.Errorf("decode path message: %w", err)
	}
	if msg.Agent == "" {
		return PathMessage{}, errors.New("decode path message: missing agent")
	}
	return msg, nil
}

// PathDispatcher publishes trajectories for one map.
type PathDispatcher struct {
	pub   Publisher
	mapID uuid.UUID
}

// NewPathDispatcher creates a dispatcher for m.
func NewPathDispatcher(pub Publisher, m *core.Map) *PathDispatcher {
	return &PathDispatcher{pub: pub, mapID: m.ID}
}

// Dispatch publishes one agent's path.
func (d *PathDispatcher) Dispatch(agent string, p *core.Path) error {
	payload, err := json.Marshal(NewPathMessage(d.mapID, agent, p))
	if err != nil {
		return err
	}
	if err := d.pub.Publish(Topic(d.mapID, agent), payload); err != nil {
		return fmt.Errorf("dispatch %s: %w", agent, err)
	}
	return nil
}

// DispatchPlan publishes every committed path in res, in planning order. It keeps
// going after a failed publish and returns all failures joined.
func (d *PathDispatcher) DispatchPlan(res *algo.PlanResult) error {
	var errs []error
	for _, agent := range res.Order {
		p, ok := res.Paths[agent]
		if !ok {
			continue
		}
		if err := d.Dispatch(agent, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch subscribes to every agent path on the map and hands decoded messages to fn.
// Undecodable payloads are passed to onErr when it is set.
func Watch(sub Subscriber, mapID uuid.UUID, fn func(PathMessage), onErr func(topic string, err error)) error {
	filter := fmt.Sprintf("warehouse/%s/agents/+/path", mapID)
	return sub.Subscribe(filter, func(topic string, payload []byte) {
		msg, err := DecodePathMessage(payload)
		if err != nil {
			if onErr != nil {
				onErr(topic, err)
			}
			return
		}
		fn(msg)
	})
}

// AgentFromTopic extracts the agent ID from a path topic.
func AgentFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != "warehouse" || parts[2] != "agents" || parts[4] != "path" {
		return "", false
	}
	return parts[3], true
}
