package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEnv_Existing(t *testing.T) {
	os.Setenv("AMCWALLET_TEST_KEY", "qux")
	val := GetEnv("AMCWALLET_TEST_KEY", "baz")
	require.Equal(t, "qux", val)
	os.Unsetenv("AMCWALLET_TEST_KEY")
}

func TestGetEnv_Default(t *testing.T) {
	os.Unsetenv("AMCWALLET_TEST_KEY")
	val := GetEnv("AMCWALLET_TEST_KEY", "baz")
	require.Equal(t, "baz", val)
}
