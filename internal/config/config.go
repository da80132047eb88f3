package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	EmbedLLM    LLMConfig         `yaml:"embed_llm"`
	RAG         RAGConfig         `yaml:"rag"`
	Infographic InfographicConfig `yaml:"infographic"`
	Mindmap     MindmapConfig     `yaml:"mindmap"`
}

type ServerConfig struct {
	Addr              string `yaml:"addr"`
	StaticDir         string `yaml:"static_dir"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type RAGConfig struct {
	VectorStoresDir string `yaml:"vector_stores_dir"`
	ChunkSize       int    `yaml:"chunk_size"`
	ChunkOverlap    int    `yaml:"chunk_overlap"`
	AnswerTopK      int    `yaml:"answer_top_k"`
	DetailsTopK     int    `yaml:"details_top_k"`
}

type InfographicConfig struct {
	BriaKey        string `yaml:"bria_key"`
	HuggingFaceKey string `yaml:"huggingface_key"`
	OutputDir      string `yaml:"output_dir"`
}

type MindmapConfig struct {
	GeminiKey string `yaml:"gemini_key"`
	Model     string `yaml:"model"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills gaps so a minimal config file still yields a
// runnable server. API keys fall back to environment variables, which is
// where they normally live.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./static"
	}
	if c.Server.SessionTTLMinutes <= 0 {
		c.Server.SessionTTLMinutes = 30
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama-3.1-8b-instant"
	}
	if c.LLM.Key == "" {
		c.LLM.Key = os.Getenv("GROQ_API_KEY")
	}
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = "ollama"
	}
	if c.EmbedLLM.BaseURL == "" {
		c.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = "nomic-embed-text"
	}
	if c.RAG.VectorStoresDir == "" {
		c.RAG.VectorStoresDir = "./vector_stores"
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.AnswerTopK <= 0 {
		c.RAG.AnswerTopK = 4
	}
	if c.RAG.DetailsTopK <= 0 {
		c.RAG.DetailsTopK = 6
	}
	if c.Infographic.BriaKey == "" {
		c.Infographic.BriaKey = os.Getenv("BRIA_API_KEY")
	}
	if c.Infographic.HuggingFaceKey == "" {
		c.Infographic.HuggingFaceKey = os.Getenv("HUGGINGFACE_API_KEY")
	}
	if c.Infographic.OutputDir == "" {
		c.Infographic.OutputDir = "./static/infographics"
	}
	if c.Mindmap.GeminiKey == "" {
		c.Mindmap.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Mindmap.Model == "" {
		c.Mindmap.Model = "gemini-1.5-flash"
	}
}
