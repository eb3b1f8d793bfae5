// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package shmq

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent tests whose correctness depends on
// cross-variable acquire/release ordering the race detector cannot see,
// which otherwise trigger false positives.
const RaceEnabled = true
