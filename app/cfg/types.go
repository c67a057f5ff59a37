package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Feed sources and filtering
	SourcesFile    string
	FiltersFile    string
	AllowedDomains []string

	// Summarization engine
	Engine       string
	Model        string
	Language     string
	OpenAIKey    string
	OpenAIBase   string
	AnthropicKey string
	OllamaHost   string

	// Notification channels
	Channels             []string
	SlackWebhookURL      string
	DiscordWebhookURL    string
	MattermostWebhookURL string
	TeamsWebhookURL      string
	WebhookURL           string
	WebhookSecret        string
	TelegramToken        string
	TelegramChatID       int64

	// Processing policy
	ProcessLimit        int
	BulkImportThreshold int
	DigestMaxItems      int
	DigestMaxChars      int
	ExtractContent      bool

	// Fetching
	FetchTimeout int // seconds
	FetchRetries int

	// Daemon mode
	Port           string
	APIAccessKey   string
	ScanSchedule   string
	DigestSchedule string

	// Command options
	ScanURL        string
	ListLimit      int
	PendingSummary bool
	Days           int
	ExportFormat   string
	ExportOutput   string
	FilterTags     string
	Yes            bool
	DryRun         bool

	Debug   bool
	Version string

	// Positional command name plus its trailing arguments
	Command string
	Args    []string
}
