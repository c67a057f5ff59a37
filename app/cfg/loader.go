package cfg

import (
	"cmp"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"newsbrief.db" description:"Path to the SQLite database file"`

	// Feed sources and filtering
	SourcesFile    string   `long:"sources-file" env:"SOURCES_FILE" description:"YAML file with feed sources (built-in AWS feeds when unset)"`
	FiltersFile    string   `long:"filters-file" env:"FILTERS_FILE" default:"filters.yaml" description:"YAML file with filter rules"`
	AllowedDomains []string `long:"allowed-domain" env:"ALLOWED_DOMAINS" env-delim:"," default:"aws.amazon.com" default:"amazon.com" description:"Domains feed URLs may resolve to"`

	// Summarization engine
	Engine       string `long:"engine" env:"AI_ENGINE" default:"ollama" description:"Summarization engine (ollama, openai, anthropic)"`
	Model        string `long:"model" env:"AI_MODEL" default:"llama2" description:"Model name for the selected engine"`
	Language     string `long:"language" env:"SUMMARY_LANGUAGE" default:"English" description:"Output language for summaries"`
	OpenAIKey    string `long:"openai-key" env:"OPENAI_API_KEY" description:"OpenAI API key"`
	OpenAIBase   string `long:"openai-base" env:"OPENAI_BASE_URL" description:"OpenAI-compatible base URL override"`
	AnthropicKey string `long:"anthropic-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key"`
	OllamaHost   string `long:"ollama-host" env:"OLLAMA_HOST" default:"http://localhost:11434" description:"Ollama host URL"`

	// Notification channels
	Channels             []string `long:"channel" env:"NOTIFY_CHANNELS" env-delim:"," default:"slack" description:"Notification channels (slack, discord, telegram, mattermost, teams, webhook)"`
	SlackWebhookURL      string   `long:"slack-webhook-url" env:"SLACK_WEBHOOK_URL" description:"Slack incoming webhook URL"`
	DiscordWebhookURL    string   `long:"discord-webhook-url" env:"DISCORD_WEBHOOK_URL" description:"Discord webhook URL"`
	MattermostWebhookURL string   `long:"mattermost-webhook-url" env:"MATTERMOST_WEBHOOK_URL" description:"Mattermost incoming webhook URL"`
	TeamsWebhookURL      string   `long:"teams-webhook-url" env:"TEAMS_WEBHOOK_URL" description:"Microsoft Teams webhook URL"`
	WebhookURL           string   `long:"webhook-url" env:"WEBHOOK_URL" description:"Generic webhook endpoint"`
	WebhookSecret        string   `long:"webhook-secret" env:"WEBHOOK_SECRET" description:"HMAC secret for the generic webhook"`
	TelegramToken        string   `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token"`
	TelegramChatID       int64    `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID"`

	// Processing policy
	ProcessLimit        int  `long:"limit" env:"PROCESS_LIMIT" default:"5" description:"Maximum items processed per cycle"`
	BulkImportThreshold int  `long:"bulk-import-threshold" env:"BULK_IMPORT_THRESHOLD" default:"50" description:"Pending-item count that triggers the first-run bulk mark"`
	DigestMaxItems      int  `long:"digest-max-items" env:"DIGEST_MAX_ITEMS" default:"50" description:"Maximum items included in a digest"`
	DigestMaxChars      int  `long:"digest-max-chars" env:"DIGEST_MAX_CHARS" default:"15000" description:"Maximum characters of digest input passed to the engine"`
	ExtractContent      bool `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch and extract article text when a feed entry has no content"`

	// Fetching
	FetchTimeout int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	FetchRetries int `long:"fetch-retries" env:"FETCH_RETRIES" default:"3" description:"Feed fetch attempt budget"`

	// Daemon mode
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP status API port (serve command)"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for trigger endpoints (optional)"`
	ScanSchedule   string `long:"scan-schedule" env:"SCAN_SCHEDULE" default:"*/30 * * * *" description:"Cron schedule for scan+process cycles (serve command)"`
	DigestSchedule string `long:"digest-schedule" env:"DIGEST_SCHEDULE" default:"0 8 * * MON" description:"Cron schedule for digests (serve command)"`

	// Command options
	ScanURL        string `long:"url" default:"all" description:"Feed URL to scan, or 'all' for every configured source"`
	ListLimit      int    `long:"list-limit" default:"10" description:"Number of items shown by the list command"`
	PendingSummary bool   `long:"pending-summary" description:"List only items without a summary"`
	Days           int    `long:"days" default:"7" description:"Trailing window in days (digest, export, cleanup)"`
	ExportFormat   string `long:"format" default:"json" description:"Export format: json, csv, markdown, txt"`
	ExportOutput   string `long:"output" default:"export" description:"Export filename without extension"`
	FilterTags     string `long:"tags" description:"Comma-separated tag filter for export"`
	Yes            bool   `long:"yes" short:"y" description:"Skip confirmation prompts"`
	DryRun         bool   `long:"dry-run" description:"Show what cleanup would delete without deleting"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Positional struct {
		Command string   `positional-arg-name:"command" description:"scan | process | digest | list | mark-all-read | verify | export | cleanup | serve"`
		Rest    []string `positional-arg-name:"args"`
	} `positional-args:"yes"`
}

func Load() (*Cfg, error) {
	return LoadFrom(os.Args[1:])
}

func LoadFrom(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[command] [options]"

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		SourcesFile:          raw.SourcesFile,
		FiltersFile:          raw.FiltersFile,
		AllowedDomains:       raw.AllowedDomains,
		Engine:               raw.Engine,
		Model:                raw.Model,
		Language:             raw.Language,
		OpenAIKey:            raw.OpenAIKey,
		OpenAIBase:           raw.OpenAIBase,
		AnthropicKey:         raw.AnthropicKey,
		OllamaHost:           raw.OllamaHost,
		Channels:             raw.Channels,
		SlackWebhookURL:      raw.SlackWebhookURL,
		DiscordWebhookURL:    raw.DiscordWebhookURL,
		MattermostWebhookURL: raw.MattermostWebhookURL,
		TeamsWebhookURL:      raw.TeamsWebhookURL,
		WebhookURL:           raw.WebhookURL,
		WebhookSecret:        raw.WebhookSecret,
		TelegramToken:        raw.TelegramToken,
		TelegramChatID:       raw.TelegramChatID,
		ProcessLimit:         raw.ProcessLimit,
		BulkImportThreshold:  raw.BulkImportThreshold,
		DigestMaxItems:       raw.DigestMaxItems,
		DigestMaxChars:       raw.DigestMaxChars,
		ExtractContent:       raw.ExtractContent,
		FetchTimeout:         raw.FetchTimeout,
		FetchRetries:         raw.FetchRetries,
		Port:                 raw.Port,
		APIAccessKey:         raw.APIAccessKey,
		ScanSchedule:         raw.ScanSchedule,
		DigestSchedule:       raw.DigestSchedule,
		ScanURL:              raw.ScanURL,
		ListLimit:            raw.ListLimit,
		PendingSummary:       raw.PendingSummary,
		Days:                 raw.Days,
		ExportFormat:         raw.ExportFormat,
		ExportOutput:         raw.ExportOutput,
		FilterTags:           raw.FilterTags,
		Yes:                  raw.Yes,
		DryRun:               raw.DryRun,
		Debug:                raw.Debug,
		Version:              GetVersion(),
		Command:              raw.Positional.Command,
		Args:                 raw.Positional.Rest,
	}

	return cfg, nil
}
