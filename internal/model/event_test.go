package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStakingEventRecordJSONRoundTrip(t *testing.T) {
	original := StakingEventRecord{
		ChainID:     1,
		BlockNumber: 18000000,
		BlockHash:   "0xabc123",
		TxHash:      "0xdef456",
		LogIndex:    3,
		Address:     "0x1111111111111111111111111111111111111111",
		EventName:   EventDeposit,
		Timestamp:   1700000000,
		Decoded:     json.RawMessage(`{"staker":"0x2222222222222222222222222222222222222222","amount":"1000000000000000000"}`),
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded StakingEventRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestRewardsAccruedEventDataJSONStringFields(t *testing.T) {
	payload := RewardsAccruedEventData{
		RewardsUSD:         "1234.5678",
		ProtocolRewardsUSD: "123.45",
		RewardStaked:       "5000000000000000000",
		OutputShares:       "12345678901234567890",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"rewards_usd", "protocol_rewards_usd", "reward_staked", "output_shares"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
}
