package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bind lets a flag override key, but only when it was set on the command
// line. Unset flags fall through to the file, environment and defaults.
func bind(v *viper.Viper, f *pflag.Flag, key string) {
	if f == nil {
		panic("bind: unknown flag for " + key)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
