// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"encoding/binary"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/percent"
	"github.com/hayotensor/hypertensor/tensor"
)

// Random is the host randomness source. Number returns a value in [0, max).
type Random interface {
	Number(max, seed uint64) uint64
}

// Candidate is a node eligible to validate, with its selection weight.
type Candidate struct {
	Account tensor.Address
	Score   uint64
}

// Seed derives the selection seed of a subnet epoch.
func Seed(subnet tensor.SubnetID, epoch, block uint32) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], epoch)
	binary.BigEndian.PutUint32(buf[4:], block)
	h := tensor.Blake2b(subnet.Bytes(), buf[:])
	return binary.BigEndian.Uint64(h[:8])
}

// Score computes the selection weight of a candidate at epoch.
func Score(stats *ValidatorStats, epoch uint32, p *params.Values) uint64 {
	base := p.NewValidatorBaseScore
	if stats.Validations > 0 {
		base = percent.DivUint64(uint64(stats.Successes), uint64(stats.Validations))
	}
	if stats.Slashed && p.SlashDecayEpochs > 0 && epoch >= stats.LastSlashEpoch {
		if elapsed := epoch - stats.LastSlashEpoch; elapsed < p.SlashDecayEpochs {
			base = base * uint64(elapsed) / uint64(p.SlashDecayEpochs)
		}
	}
	streak := min(stats.Consecutive, p.MaxConsecutiveBonus)
	bonus := uint64(streak) * p.ConsecutiveBonusPercentage
	return base + percent.MulUint64(base, bonus)
}

// Choose picks a candidate weighted by score. It falls back to a uniform pick
// when every score is zero and reports false when there are no candidates.
func Choose(candidates []Candidate, rnd Random, seed uint64) (tensor.Address, bool) {
	if len(candidates) == 0 {
		return tensor.Address{}, false
	}
	var total uint64
	for _, c := range candidates {
		if total+c.Score < total {
			total = ^uint64(0)
			break
		}
		total += c.Score
	}
	if total == 0 {
		i := rnd.Number(uint64(len(candidates)), seed)
		return candidates[i%uint64(len(candidates))].Account, true
	}

	r := rnd.Number(total, seed) % total
	var acc uint64
	for _, c := range candidates {
		acc += c.Score
		if acc < c.Score || r < acc {
			return c.Account, true
		}
	}
	return candidates[len(candidates)-1].Account, true
}
