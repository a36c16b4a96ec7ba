// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

type Config struct {
	ResultCacheSize  int `yaml:"resultCacheSize"`  // how many tx results to keep decoded in memory
	MaxCallDepth     int `yaml:"maxCallDepth"`     // nested contract calls allowed per tx
	SubscriberBuffer int `yaml:"subscriberBuffer"` // results buffered per subscriber before it is dropped
}

func NewConfig() Config {
	return Config{
		ResultCacheSize:  4_096,
		MaxCallDepth:     16,
		SubscriberBuffer: 256,
	}
}
