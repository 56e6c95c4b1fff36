package inmemory

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInMemoryVectorDriver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "In-Memory Vector Driver Suite")
}
