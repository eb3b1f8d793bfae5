// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"code.hybscloud.com/shmq"
)

func qName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("shmq-qtest-%d-%s", os.Getpid(), t.Name())
}

// TestQueuePutGetRoundTrip covers scenario S1: put then get returns the
// same bytes, and a second get on an empty queue reports QueueEmpty.
func TestQueuePutGetRoundTrip(t *testing.T) {
	q, err := shmq.New(qName(t)).ElementSize(8).Capacity(4).Create().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer q.Close()

	record := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := q.PutNowait(record); err != nil {
		t.Fatalf("PutNowait: %v", err)
	}

	got, err := q.GetNowait()
	if err != nil {
		t.Fatalf("GetNowait: %v", err)
	}
	if string(got) != string(record) {
		t.Fatalf("GetNowait: got %v, want %v", got, record)
	}

	var wantEmpty *shmq.QueueEmptyError
	if _, err := q.GetNowait(); !errors.As(err, &wantEmpty) {
		t.Fatalf("GetNowait on empty: got %v, want *QueueEmptyError", err)
	}
}

// TestQueueFullAfterCapacityReached covers scenario S2: with capacity=2,
// a 3rd put without an intervening get returns QueueFull; after one
// get frees a slot, a 3rd put succeeds.
func TestQueueFullAfterCapacityReached(t *testing.T) {
	q, err := shmq.New(qName(t)).ElementSize(1).Capacity(2).Create().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer q.Close()

	if err := q.PutNowait([]byte{1}); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := q.PutNowait([]byte{2}); err != nil {
		t.Fatalf("put 2: %v", err)
	}

	var wantFull *shmq.QueueFullError
	if err := q.PutNowait([]byte{3}); !errors.As(err, &wantFull) {
		t.Fatalf("put 3 on full: got %v, want *QueueFullError", err)
	}

	if _, err := q.GetNowait(); err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := q.PutNowait([]byte{3}); err != nil {
		t.Fatalf("put 3 after freeing a slot: %v", err)
	}
}

// TestQueueRejectsNonPowerOfTwoCapacity covers scenario S3: capacity=3
// is rejected at construction, not silently rounded up.
func TestQueueRejectsNonPowerOfTwoCapacity(t *testing.T) {
	_, err := shmq.New(qName(t)).ElementSize(8).Capacity(3).Create().Build()
	var want *shmq.BufferSizeNotPowerOfTwoError
	if !errors.As(err, &want) {
		t.Fatalf("Build(capacity=3): got %v, want *BufferSizeNotPowerOfTwoError", err)
	}
}

// TestQueueRejectsWrongElementLength covers scenario S4: a put whose
// payload length does not match element_size is rejected with the
// expected/actual lengths.
func TestQueueRejectsWrongElementLength(t *testing.T) {
	q, err := shmq.New(qName(t)).ElementSize(16).Capacity(4).Create().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer q.Close()

	err = q.PutNowait(make([]byte, 15))
	var want *shmq.InvalidSourceLengthError
	if !errors.As(err, &want) {
		t.Fatalf("put(len=15): got %v, want *InvalidSourceLengthError", err)
	}
	if want.Expected != 16 || want.Actual != 15 {
		t.Fatalf("InvalidSourceLengthError: got expected=%d actual=%d, want 16,15", want.Expected, want.Actual)
	}
}

// TestQueueCrossProcessHandles covers scenario S5's data-path semantics
// using two in-process handles over the same named segment in place of
// two OS processes: a creator and an opener exchanging 4-byte
// little-endian integers 0..9999 preserve order under a single producer
// and single consumer.
func TestQueueCrossProcessHandles(t *testing.T) {
	const total = 10000
	name := qName(t)

	producer, err := shmq.New(name).ElementSize(4).Capacity(1024).Create().Build()
	if err != nil {
		t.Fatalf("Create Build: %v", err)
	}
	defer producer.Close()

	consumer, err := shmq.New(name).Open().Build()
	if err != nil {
		t.Fatalf("Open Build: %v", err)
	}
	defer consumer.Close()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(i))
			if err := producer.Put(buf, 2*time.Second); err != nil {
				done <- err
				return
			}
		}
	}()

	for i := 0; i < total; i++ {
		got, err := consumer.Get(2 * time.Second)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		v := binary.LittleEndian.Uint32(got)
		if v != uint32(i) {
			t.Fatalf("Get(%d): got %d, want %d", i, v, i)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("producer: %v", err)
	}
}

// TestQueuePutTimeout covers scenario S6: Put on a full queue returns
// QueueFull once its timeout elapses, within acceptable slack.
func TestQueuePutTimeout(t *testing.T) {
	q, err := shmq.New(qName(t)).ElementSize(1).Capacity(2).Create().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer q.Close()

	if err := q.PutNowait([]byte{1}); err != nil {
		t.Fatalf("fill 1: %v", err)
	}
	if err := q.PutNowait([]byte{2}); err != nil {
		t.Fatalf("fill 2: %v", err)
	}

	start := time.Now()
	err = q.Put([]byte{3}, 100*time.Millisecond)
	elapsed := time.Since(start)

	var want *shmq.QueueFullError
	if !errors.As(err, &want) {
		t.Fatalf("Put on full with timeout: got %v, want *QueueFullError", err)
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("Put returned after %v, want >= 100ms", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("Put returned after %v, want < 500ms slack", elapsed)
	}
}

// TestQueueCloseIsIdempotentAndBlocksFurtherUse checks Close may be
// called more than once and every subsequent operation reports
// ErrQueueClosed.
func TestQueueCloseIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	q, err := shmq.New(qName(t)).ElementSize(4).Capacity(2).Create().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := q.PutNowait(make([]byte, 4)); !errors.Is(err, shmq.ErrQueueClosed) {
		t.Fatalf("PutNowait after Close: got %v, want ErrQueueClosed", err)
	}
	if _, err := q.GetNowait(); !errors.Is(err, shmq.ErrQueueClosed) {
		t.Fatalf("GetNowait after Close: got %v, want ErrQueueClosed", err)
	}
}

// TestQueueSizeQueries checks ElementSize, MaxSize, Empty, and Full
// track the ring's occupancy as puts and gets proceed.
func TestQueueSizeQueries(t *testing.T) {
	q, err := shmq.New(qName(t)).ElementSize(2).Capacity(4).Create().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer q.Close()

	if q.ElementSize() != 2 || q.MaxSize() != 4 {
		t.Fatalf("ElementSize/MaxSize: got %d,%d, want 2,4", q.ElementSize(), q.MaxSize())
	}
	if !q.Empty() {
		t.Fatalf("new queue should be Empty")
	}

	for range 4 {
		if err := q.PutNowait(make([]byte, 2)); err != nil {
			t.Fatalf("PutNowait: %v", err)
		}
	}
	if !q.Full() {
		t.Fatalf("queue at capacity should be Full")
	}
}

// TestQueueBuildRequiresLifecycleSelection checks Build rejects a
// builder that never called Create or Open.
func TestQueueBuildRequiresLifecycleSelection(t *testing.T) {
	_, err := shmq.New(qName(t)).ElementSize(4).Capacity(4).Build()
	var want *shmq.InvalidParametersError
	if !errors.As(err, &want) {
		t.Fatalf("Build without Create/Open: got %v, want *InvalidParametersError", err)
	}
}
