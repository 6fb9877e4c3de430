package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPromptTemplate(t *testing.T) {
	tempDir := t.TempDir()

	// Test case 1: Load an existing template
	testContent := "You are AmVerse, a financial advisor.\nAnswer using the provided documents."
	testFile := filepath.Join(tempDir, "default-template.txt")
	err := os.WriteFile(testFile, []byte(testContent), 0644)
	require.NoError(t, err)

	content, err := LoadPromptTemplate(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	// Test case 2: Surrounding whitespace is trimmed
	paddedFile := filepath.Join(tempDir, "padded.txt")
	err = os.WriteFile(paddedFile, []byte("\n  Answer briefly.  \n"), 0644)
	require.NoError(t, err)

	content, err = LoadPromptTemplate(paddedFile)
	require.NoError(t, err)
	assert.Equal(t, "Answer briefly.", content)

	// Test case 3: File not found
	_, err = LoadPromptTemplate(filepath.Join(tempDir, "nonexistent.txt"))
	assert.Error(t, err)
}

func TestLoadPromptTemplateWithFallback(t *testing.T) {
	tempDir := t.TempDir()
	fallbackContent := "This is a fallback template"

	// Test case 1: File exists
	testContent := "Actual template content"
	testFile := filepath.Join(tempDir, "existing-template.txt")
	err := os.WriteFile(testFile, []byte(testContent), 0644)
	require.NoError(t, err)

	content := LoadPromptTemplateWithFallback(testFile, fallbackContent)
	assert.Equal(t, testContent, content)

	// Test case 2: File doesn't exist, use fallback
	content = LoadPromptTemplateWithFallback(filepath.Join(tempDir, "nonexistent.txt"), fallbackContent)
	assert.Equal(t, fallbackContent, content)
}
