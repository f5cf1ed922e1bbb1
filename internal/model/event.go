package model

import "encoding/json"

// Event names the pipeline dispatches on.
const (
	EventDeposit        = "deposit"
	EventRewardStake    = "reward_stake"
	EventRewardsAccrued = "rewards_accrued"
)

// StakingEventRecord is the JSON representation of a decoded staking event
// as produced by the upstream decoder.
type StakingEventRecord struct {
	ChainID     uint64          `json:"chain_id"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	TxHash      string          `json:"tx_hash"`
	LogIndex    uint64          `json:"log_index"`
	Address     string          `json:"address"`
	EventName   string          `json:"event_name"`
	Timestamp   uint64          `json:"timestamp"`
	Decoded     json.RawMessage `json:"decoded"`
}

// DepositEventData is the decoded payload of a base-token deposit.
type DepositEventData struct {
	Staker string `json:"staker"`
	Amount string `json:"amount"`
}

// RewardStakeEventData is the decoded payload of a reward-token stake.
type RewardStakeEventData struct {
	Staker string `json:"staker"`
	Amount string `json:"amount"`
}

// RewardsAccruedEventData is the decoded payload of a reward accrual. USD
// figures are decimal strings; raw amounts are integer strings scaled by the
// token's decimals.
type RewardsAccruedEventData struct {
	RewardsUSD         string `json:"rewards_usd"`
	ProtocolRewardsUSD string `json:"protocol_rewards_usd"`
	RewardStaked       string `json:"reward_staked"`
	OutputShares       string `json:"output_shares"`
}
