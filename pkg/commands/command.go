// Package commands interprets model responses as batches of structured
// commands (file, process, network and scratch-memory operations), runs
// them in order with per-command fault isolation, and renders the results
// as a plain-text report.
package commands

// Kind names a command variant. It is also the canonical value of the
// "cmd" tag in the batch JSON.
type Kind string

// Command kinds.
const (
	KindRead       Kind = "Read"
	KindWrite      Kind = "Write"
	KindEdit       Kind = "Edit"
	KindDelete     Kind = "Delete"
	KindExec       Kind = "Exec"
	KindList       Kind = "List"
	KindSearch     Kind = "Search"
	KindThink      Kind = "Think"
	KindPlan       Kind = "Plan"
	KindUpdatePlan Kind = "UpdatePlan"
	KindRemember   Kind = "Remember"
	KindRecall     Kind = "Recall"
	KindWebFetch   Kind = "WebFetch"
	KindParse      Kind = "Parse"
	KindStatus     Kind = "Status"
	KindReport     Kind = "Report"
)

// Command is one operation of a batch. The set of implementations is
// closed; see the Kind constants.
type Command interface {
	Kind() Kind
}

type (
	Read struct {
		Path string `json:"path"`
	}
	Write struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	// Edit replaces every occurrence of Pattern (literal text) in the file.
	Edit struct {
		Path        string `json:"path"`
		Pattern     string `json:"pattern"`
		Replacement string `json:"replacement"`
	}
	Delete struct {
		Path string `json:"path"`
	}
	Exec struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	}
	// List reads one directory. Pattern, when set, keeps entries whose
	// path or name contains it.
	List struct {
		Path    string `json:"path"`
		Pattern string `json:"pattern,omitempty"`
	}
	// Search greps files under Path (default: working directory) for the
	// regular expression Pattern.
	Search struct {
		Pattern  string `json:"pattern"`
		Path     string `json:"path,omitempty"`
		FileType string `json:"file_type,omitempty"`
	}
	Think struct {
		Reasoning string `json:"reasoning"`
	}
	Plan struct {
		Tasks []string `json:"tasks"`
	}
	UpdatePlan struct {
		PlanID string     `json:"plan_id"`
		TaskID string     `json:"task_id"`
		Status TaskStatus `json:"status"`
	}
	Remember struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	Recall struct {
		Key string `json:"key"`
	}
	// WebFetch GETs URL. Extract, when set, keeps only lines containing
	// it (case-insensitive).
	WebFetch struct {
		URL     string `json:"url"`
		Extract string `json:"extract,omitempty"`
	}
	Parse struct {
		Content string     `json:"content"`
		Format  DataFormat `json:"format"`
	}
	Status struct {
		Message string      `json:"message"`
		Level   StatusLevel `json:"level"`
	}
	Report struct {
		Title    string    `json:"title"`
		Sections []Section `json:"sections"`
	}
)

// Section is one titled part of a Report.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (Read) Kind() Kind       { return KindRead }
func (Write) Kind() Kind      { return KindWrite }
func (Edit) Kind() Kind       { return KindEdit }
func (Delete) Kind() Kind     { return KindDelete }
func (Exec) Kind() Kind       { return KindExec }
func (List) Kind() Kind       { return KindList }
func (Search) Kind() Kind     { return KindSearch }
func (Think) Kind() Kind      { return KindThink }
func (Plan) Kind() Kind       { return KindPlan }
func (UpdatePlan) Kind() Kind { return KindUpdatePlan }
func (Remember) Kind() Kind   { return KindRemember }
func (Recall) Kind() Kind     { return KindRecall }
func (WebFetch) Kind() Kind   { return KindWebFetch }
func (Parse) Kind() Kind      { return KindParse }
func (Status) Kind() Kind     { return KindStatus }
func (Report) Kind() Kind     { return KindReport }

// TaskStatus is the state of a plan task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskFailed:
		return true
	}
	return false
}

// DataFormat is the input format of a Parse command.
type DataFormat string

const (
	FormatJSON DataFormat = "json"
	FormatYAML DataFormat = "yaml"
	FormatTOML DataFormat = "toml"
	FormatXML  DataFormat = "xml"
)

// Valid reports whether f is a known format.
func (f DataFormat) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatXML:
		return true
	}
	return false
}

// StatusLevel is the severity of a Status command.
type StatusLevel string

const (
	LevelInfo    StatusLevel = "info"
	LevelWarning StatusLevel = "warning"
	LevelError   StatusLevel = "error"
	LevelSuccess StatusLevel = "success"
)

// Valid reports whether l is a known level.
func (l StatusLevel) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError, LevelSuccess:
		return true
	}
	return false
}
