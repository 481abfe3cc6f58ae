// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package record implements gpucore.Device in memory.
//
// Nothing is executed. Command streams keep the commands recorded into
// them, submissions complete immediately, and the device keeps a trace of
// submissions and swapchain events that tests can inspect. The recorder
// also checks the synchronization protocol: a binary semaphore must be
// signalled exactly once before each wait, a fence that nothing will
// signal cannot be waited on, and destroyed objects cannot be used.
//
// Importing the package registers the "record" backend.
package record
