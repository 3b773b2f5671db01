package llm

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsArePrefixedByRole(t *testing.T) {
	emb, chat := NewEmbeddingOptions(), NewChatOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	emb.AddFlags(fs)
	chat.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--embedding.provider=ollama", "--chat.model=gpt-4o-mini"}))
	assert.Equal(t, "ollama", emb.Provider)
	assert.Equal(t, "gpt-4o-mini", chat.Model)
	assert.Equal(t, "gemini", chat.Provider)
}

func TestValidate(t *testing.T) {
	o := NewChatOptions()
	assert.Len(t, o.Validate(), 1, "gemini 需要 api-key")

	o.Provider = "ollama"
	assert.Empty(t, o.Validate())
}

func TestToConfigMapNeverRetries(t *testing.T) {
	o := NewEmbeddingOptions()
	o.APIKey = "k"
	m := o.ToConfigMap()
	assert.Equal(t, 0, m["max_retries"])
	assert.Equal(t, "text-embedding-004", m["embed_model"])
	assert.Equal(t, "k", m["api_key"])
}
