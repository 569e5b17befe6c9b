// Copyright (c) 2025 Neomantra Corp

package mbp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestMbp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "mbp-go suite")
}
