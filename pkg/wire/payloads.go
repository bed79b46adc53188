package wire

// Progress describes how far a long-running operation has advanced.
type Progress struct {
	Stage      string  `json:"stage"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// GenerationStatus is the lifecycle phase of a code generation run.
type GenerationStatus string

const (
	GenerationInitializing GenerationStatus = "initializing"
	GenerationBlueprint    GenerationStatus = "blueprint"
	GenerationGenerating   GenerationStatus = "generating"
	GenerationReviewing    GenerationStatus = "reviewing"
	GenerationCompleted    GenerationStatus = "completed"
	GenerationFailed       GenerationStatus = "failed"
	GenerationCancelled    GenerationStatus = "cancelled"
)

// GeneratedFile is one file produced by a generation run.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// GenerationUpdate is the server-pushed progress report for one generation.
type GenerationUpdate struct {
	GenerationID string           `json:"generationId"`
	Status       GenerationStatus `json:"status"`
	Progress     Progress         `json:"progress"`
	Files        []GeneratedFile  `json:"files,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func (u *GenerationUpdate) MessageType() MessageType { return TypeGenerationUpdate }

// DeploymentStatus is the lifecycle phase of a deployment.
type DeploymentStatus string

const (
	DeploymentPreparing DeploymentStatus = "preparing"
	DeploymentBuilding  DeploymentStatus = "building"
	DeploymentDeploying DeploymentStatus = "deploying"
	DeploymentCompleted DeploymentStatus = "completed"
	DeploymentFailed    DeploymentStatus = "failed"
)

// DeploymentUpdate is the server-pushed progress report for one deployment.
type DeploymentUpdate struct {
	DeploymentID string           `json:"deploymentId"`
	AppID        string           `json:"appId"`
	Status       DeploymentStatus `json:"status"`
	Progress     Progress         `json:"progress"`
	URL          string           `json:"url,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func (u *DeploymentUpdate) MessageType() MessageType { return TypeDeploymentUpdate }

// Notification is a user-facing message, either pushed by the server or
// synthesized locally from transport status changes.
type Notification struct {
	ID      string         `json:"id,omitempty"`
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Options map[string]any `json:"options,omitempty"`
}

func (n *Notification) MessageType() MessageType { return TypeNotification }
