// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package config loads the welcome service's configuration from the
environment.  Every setting has an environment variable; see Config for the
names and defaults.  Load validates the result and reports every problem at
once.
*/
package config
