package rerank

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRerank(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rerank Suite")
}
