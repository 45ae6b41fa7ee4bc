package app

//go:generate go run github.com/a-peyrard/haywire/cmd/haywire-gen
