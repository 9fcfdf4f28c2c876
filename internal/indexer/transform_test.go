package indexer

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"liquidityLedger/internal/model"
)

func TestSortLogRecords(t *testing.T) {
	records := []model.LogRecord{
		{BlockNumber: 12, LogIndex: 0},
		{BlockNumber: 10, LogIndex: 5},
		{BlockNumber: 10, LogIndex: 1},
		{BlockNumber: 11, LogIndex: 3},
	}
	sortLogRecords(records)

	want := [][2]uint64{{10, 1}, {10, 5}, {11, 3}, {12, 0}}
	for i, w := range want {
		if records[i].BlockNumber != w[0] || records[i].LogIndex != w[1] {
			t.Fatalf("position %d: got (%d,%d) want %v", i, records[i].BlockNumber, records[i].LogIndex, w)
		}
	}
}

func TestBuildLogRecord(t *testing.T) {
	manager := common.HexToAddress("0x000000000004444c5dc75cB358380D2e3dE08A90")
	topic := common.HexToHash("0x01")
	log := types.Log{
		Address:     manager,
		Topics:      []common.Hash{topic},
		Data:        []byte{0xca, 0xfe},
		BlockNumber: 42,
		TxHash:      common.HexToHash("0x02"),
		TxIndex:     3,
		Index:       7,
	}
	ingested := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	record := buildLogRecord(1, log, 1700000000, ingested)
	if record.ChainID != 1 || record.BlockNumber != 42 || record.LogIndex != 7 || record.TxIndex != 3 {
		t.Fatalf("unexpected position: %+v", record)
	}
	if record.Address != manager.Hex() || record.Data != "0xcafe" {
		t.Fatalf("unexpected payload: %+v", record)
	}
	if record.Topic0() != topic.Hex() {
		t.Fatalf("topic0 mismatch: %s", record.Topic0())
	}
	if record.IngestedAt != "2025-01-02T03:04:05Z" {
		t.Fatalf("ingested at: %s", record.IngestedAt)
	}
}
