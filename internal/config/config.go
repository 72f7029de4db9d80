package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Assistant: assistant}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origins := parseListEnv("CORS_ALLOWED_ORIGINS", ",")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// AssistantConfig 描述助手小部件的可覆盖常量。
type AssistantConfig struct {
	Name          string
	Greeting      string
	ReplyDelay    time.Duration
	Suggestions   []string
	KnowledgeFile string
}

const defaultReplyDelay = 1000 * time.Millisecond

func loadAssistantConfig() (AssistantConfig, error) {
	delay := defaultReplyDelay
	delayMs, err := parseOptionalIntEnv("ASSISTANT_REPLY_DELAY_MS")
	if err != nil {
		return AssistantConfig{}, err
	}
	if delayMs != nil {
		if *delayMs < 0 {
			return AssistantConfig{}, fmt.Errorf("invalid ASSISTANT_REPLY_DELAY_MS value %d: must not be negative", *delayMs)
		}
		delay = time.Duration(*delayMs) * time.Millisecond
	}

	return AssistantConfig{
		Name:          getEnvOrDefault("ASSISTANT_NAME", "ChatKulim"),
		Greeting:      strings.TrimSpace(os.Getenv("ASSISTANT_GREETING")),
		ReplyDelay:    delay,
		Suggestions:   parseListEnv("ASSISTANT_SUGGESTIONS", "|"),
		KnowledgeFile: strings.TrimSpace(os.Getenv("KNOWLEDGE_FILE")),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseListEnv(key, sep string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(raw, sep) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
