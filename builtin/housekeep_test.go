// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

func scoresFor(f *fixture, nodes ...int) []consensus.NodeScore {
	data := make([]consensus.NodeScore, 0, len(nodes))
	for _, i := range nodes {
		data = append(data, consensus.NodeScore{PeerID: f.peers[i], Score: tensor.Ether})
	}
	return data
}

func TestRemovedNodeLosesPendingAttestation(t *testing.T) {
	f := newFixture(t)
	f.activateWith(4)
	v := f.validator(2)
	other := (v + 1) % 4

	require.NoError(t, f.net.Validate(f.nodes[v], 210, f.id, scoresFor(f, 0, 1, 2, 3)))
	require.NoError(t, f.net.Attest(f.nodes[other], 211, f.id))

	// first block of epoch 3, epoch 2 is not settled yet
	require.NoError(t, f.net.RemoveSubnetNode(f.nodes[other], 300, f.id))
	sub, err := f.net.Submission(f.id, 2)
	require.NoError(t, err)
	require.Len(t, sub.Attests, 1)
	assert.Equal(t, f.nodes[v], sub.Attests[0].Account)

	staked := f.stakeOf(f.nodes[v])
	_, err = f.net.OnInitialize(301)
	require.NoError(t, err)

	assert.Len(t, f.rec.Named("Slashed"), 1)
	assert.Empty(t, f.rec.Named("RewardsDistributed"))
	assert.True(t, f.stakeOf(f.nodes[v]).Cmp(staked) < 0)
}

func TestShortSubmission(t *testing.T) {
	run := func(t *testing.T, othersAttest bool) (*fixture, int, *big.Int) {
		f := newFixture(t)
		f.activate()
		v := f.validator(2)
		require.NoError(t, f.net.Validate(f.nodes[v], 210, f.id, scoresFor(f, (v+1)%3, (v+2)%3)))
		if othersAttest {
			for i := range 3 {
				if i != v {
					require.NoError(t, f.net.Attest(f.nodes[i], 211, f.id))
				}
			}
		}
		staked := f.stakeOf(f.nodes[v])
		_, err := f.net.OnInitialize(301)
		require.NoError(t, err)

		count, err := f.net.SubnetPenaltyCount(f.id)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), count)
		assert.Empty(t, f.rec.Named("RewardsDistributed"))
		return f, v, staked
	}

	t.Run("vast majority spares the validator", func(t *testing.T) {
		f, v, staked := run(t, true)
		assert.Empty(t, f.rec.Named("Slashed"))
		assert.Equal(t, staked, f.stakeOf(f.nodes[v]))
		assert.Zero(t, f.penaltiesOf(v))
	})

	t.Run("validator alone is slashed", func(t *testing.T) {
		f, v, staked := run(t, false)
		assert.Len(t, f.rec.Named("Slashed"), 1)
		assert.True(t, f.stakeOf(f.nodes[v]).Cmp(staked) < 0)
		assert.Equal(t, uint32(1), f.penaltiesOf(v))
	})
}

func TestLowAttestationSlashes(t *testing.T) {
	f := newFixture(t)
	f.activate()
	v := f.validator(2)
	require.NoError(t, f.net.Validate(f.nodes[v], 210, f.id, scoresFor(f, 0, 1, 2)))

	staked := f.stakeOf(f.nodes[v])
	_, err := f.net.OnInitialize(301)
	require.NoError(t, err)

	assert.Len(t, f.rec.Named("Slashed"), 1)
	assert.Empty(t, f.rec.Named("RewardsDistributed"))
	assert.True(t, f.stakeOf(f.nodes[v]).Cmp(staked) < 0)
	for i := range 3 {
		if i != v {
			assert.Equal(t, tensor.Tokens(1000), f.stakeOf(f.nodes[i]))
		}
	}

	count, err := f.net.SubnetPenaltyCount(f.id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)

	total, err := f.net.TotalStake()
	require.NoError(t, err)
	assert.Equal(t, total, f.balanceOf(tensor.StakeCustody))
}

func TestAbsentNodePenalties(t *testing.T) {
	t.Run("evicted past the ceiling", func(t *testing.T) {
		f := newFixture(t)
		f.activateWith(4)
		const absent = 3

		for e := uint32(2); e <= 4; e++ {
			f.runEpoch(e, 0, 1, 2)
			assert.Equal(t, e-1, f.penaltiesOf(absent), "epoch %d", e)
		}
		f.runEpoch(5, 0, 1, 2)

		_, err := f.net.SubnetNode(f.id, f.nodes[absent])
		assert.ErrorIs(t, err, subnet.ErrSubnetNodeNotExist)
		removed := f.rec.Named("SubnetNodeRemoved")
		require.Len(t, removed, 1)
		assert.Equal(t, "MaxPenalties", removed[0].(*events.SubnetNodeRemoved).Reason)
		assert.Len(t, f.rec.Named("RewardsDistributed"), 4)
		for i := range 3 {
			assert.Zero(t, f.penaltiesOf(i))
		}
	})

	t.Run("not penalized under the threshold", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, Params.WithState(f.st).Set(tensor.KeyNodePenaltyAttestationThreshold, big.NewInt(900_000_000)))
		f.activateWith(4)
		// the validator always attests, so the absent node is another one
		absent := (f.validator(2) + 1) % 4
		var scored []int
		for i := range 4 {
			if i != absent {
				scored = append(scored, i)
			}
		}
		f.runEpoch(2, scored...)

		assert.Zero(t, f.penaltiesOf(absent))
		assert.Len(t, f.rec.Named("RewardsDistributed"), 1)
	})
}

func TestRegisteredNodeExpires(t *testing.T) {
	f := newFixture(t)
	f.activate()
	r := f.addNode(150, false)

	for e := uint32(2); e <= 5; e++ {
		f.runEpoch(e, 0, 1, 2)
	}
	node, err := f.net.SubnetNode(f.id, f.nodes[r])
	require.NoError(t, err)
	assert.Equal(t, subnet.ClassRegistered, node.Class)

	f.runEpoch(6, 0, 1, 2)
	_, err = f.net.SubnetNode(f.id, f.nodes[r])
	assert.ErrorIs(t, err, subnet.ErrSubnetNodeNotExist)
	removed := f.rec.Named("SubnetNodeRemoved")
	require.Len(t, removed, 1)
	assert.Equal(t, "RegistrationExpired", removed[0].(*events.SubnetNodeRemoved).Reason)
	assert.Equal(t, tensor.Tokens(1000), f.stakeOf(f.nodes[r]))
}

func TestMaxSubnetPenalties(t *testing.T) {
	// two missed submissions take the subnet past a ceiling of one
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		require.NoError(t, Params.WithState(f.st).Set(tensor.KeyMaxSubnetPenaltyCount, big.NewInt(1)))
		f.activate()

		_, err := f.net.OnInitialize(301)
		require.NoError(t, err)
		_, err = f.net.OnInitialize(302)
		require.NoError(t, err)
		assert.ErrorIs(t, f.net.RemoveSubnet(f.delegator, 310, f.id), subnet.ErrInvalidSubnetRemoval)

		_, err = f.net.OnInitialize(401)
		require.NoError(t, err)
		count, err := f.net.SubnetPenaltyCount(f.id)
		require.NoError(t, err)
		require.Equal(t, uint32(2), count)
		return f
	}
	deactivated := func(t *testing.T, f *fixture) {
		_, err := f.net.Subnet(f.id)
		assert.ErrorIs(t, err, subnet.ErrSubnetNotExist)
		evs := f.rec.Named("SubnetDeactivated")
		require.Len(t, evs, 1)
		assert.Equal(t, "MaxPenalties", evs[0].(*events.SubnetDeactivated).Reason)
	}

	t.Run("anyone can remove the subnet", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.net.RemoveSubnet(f.delegator, 410, f.id))
		deactivated(t, f)
	})

	t.Run("epoch preliminaries remove the subnet", func(t *testing.T) {
		f := setup(t)
		_, err := f.net.OnInitialize(402)
		require.NoError(t, err)
		deactivated(t, f)
	})
}
