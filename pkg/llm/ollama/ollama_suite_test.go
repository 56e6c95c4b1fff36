package ollama

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOllamaClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Client Suite")
}
