package model

import "github.com/soocke/zone-console/domain/backend"

// SystemModel holds the last backend status. Before the first successful
// poll the pipeline is reported as stopped.
type SystemModel struct {
	status backend.SystemStatus
	known  bool
}

func NewSystemModel() *SystemModel { return &SystemModel{} }

func (m *SystemModel) Update(st backend.SystemStatus) {
	if m == nil {
		return
	}
	m.status, m.known = st, true
}

func (m *SystemModel) Known() bool { return m != nil && m.known }

func (m *SystemModel) Running() bool { return m != nil && m.status.PipelineRunning }

// Label is the header indicator text.
func (m *SystemModel) Label() string {
	if m.Running() {
		return "🟢 System Running"
	}
	return "🔴 System Stopped"
}
