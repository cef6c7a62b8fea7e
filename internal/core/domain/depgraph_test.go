package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ripple/internal/core/domain"
)

func file(s string) domain.InternedString {
	return domain.NewInternedString(s)
}

func declNode(key domain.Key, fingerprint, owner string, uses ...domain.Key) domain.SnapshotNode {
	return domain.SnapshotNode{
		Key:         key,
		Fingerprint: fingerprint,
		OwningFile:  file(owner),
		Uses:        uses,
	}
}

func useNode(key domain.Key, uses ...domain.Key) domain.SnapshotNode {
	return domain.SnapshotNode{Key: key, Uses: uses}
}

func snapshot(reportPath string, nodes ...domain.SnapshotNode) *domain.Snapshot {
	return &domain.Snapshot{File: file(reportPath), Nodes: nodes}
}

func TestIntegrate_Idempotent(t *testing.T) {
	g := domain.NewDepGraph()
	k := domain.NewKey(domain.KindTopLevel, "", "foo", domain.AspectInterface)
	s := snapshot("a.deps", declNode(k, "fp1", "a.deps"))

	res, err := g.Integrate(s)
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, res)
	require.NoError(t, g.Verify())

	res, err = g.Integrate(snapshot("a.deps", declNode(k, "fp1", "a.deps")))
	require.NoError(t, err)
	assert.Equal(t, domain.UpToDate, res)
	require.NoError(t, g.Verify())
}

func TestIntegrate_Addition(t *testing.T) {
	g := domain.NewDepGraph()
	k1 := domain.NewKey(domain.KindTopLevel, "", "foo", domain.AspectInterface)
	_, err := g.Integrate(snapshot("a.deps", declNode(k1, "fp1", "a.deps")))
	require.NoError(t, err)

	k2 := domain.NewKey(domain.KindNominalType, "", "Bar", domain.AspectInterface)
	res, err := g.Integrate(snapshot("a.deps",
		declNode(k1, "fp1", "a.deps"),
		declNode(k2, "fp2", "a.deps"),
	))
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, res)

	found := false
	for n := range g.Nodes() {
		if n.Key() == k2 {
			found = true
			assert.Equal(t, "a.deps", n.OwningFile().String())
		}
	}
	assert.True(t, found, "new node for k2 should exist in a.deps")
	require.NoError(t, g.Verify())
}

func TestIntegrate_FingerprintChange(t *testing.T) {
	g := domain.NewDepGraph()
	k := domain.NewKey(domain.KindTopLevel, "", "foo", domain.AspectInterface)
	_, err := g.Integrate(snapshot("a.deps", declNode(k, "fp1", "a.deps")))
	require.NoError(t, err)

	res, err := g.Integrate(snapshot("a.deps", declNode(k, "fp2", "a.deps")))
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, res)
}

func TestIntegrate_Removal(t *testing.T) {
	g := domain.NewDepGraph()
	k1 := domain.NewKey(domain.KindTopLevel, "", "foo", domain.AspectInterface)
	k2 := domain.NewKey(domain.KindTopLevel, "", "bar", domain.AspectInterface)
	_, err := g.Integrate(snapshot("a.deps",
		declNode(k1, "fp1", "a.deps"),
		declNode(k2, "fp2", "a.deps"),
	))
	require.NoError(t, err)

	res, err := g.Integrate(snapshot("a.deps", declNode(k1, "fp1", "a.deps")))
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, res, "dropping a declaration is a change")

	for n := range g.Nodes() {
		assert.NotEqual(t, k2, n.Key(), "removed declaration should leave the store")
	}
	require.NoError(t, g.Verify())
}

func TestIntegrate_ExpatResolution_UseBeforeDef(t *testing.T) {
	g := domain.NewDepGraph()
	k := domain.NewKey(domain.KindNominalType, "", "Shared", domain.AspectInterface)

	// File b references the key without knowing its home.
	res, err := g.Integrate(snapshot("b.deps", useNode(k)))
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, res)

	// The defining file arrives later.
	res, err = g.Integrate(snapshot("a.deps", declNode(k, "fp1", "a.deps")))
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, res, "relocation counts as a change")

	var owners []string
	for n := range g.Nodes() {
		if n.Key() == k {
			owners = append(owners, n.OwningFile().String())
		}
	}
	assert.Equal(t, []string{"a.deps"}, owners, "exactly one node, owned by the defining file")
	require.NoError(t, g.Verify())
}

func TestIntegrate_ExpatResolution_DefBeforeUse(t *testing.T) {
	g := domain.NewDepGraph()
	k := domain.NewKey(domain.KindNominalType, "", "Shared", domain.AspectInterface)

	_, err := g.Integrate(snapshot("a.deps", declNode(k, "fp1", "a.deps")))
	require.NoError(t, err)

	// b's reference alone must not register as a change: a concrete owner
	// already exists.
	res, err := g.Integrate(snapshot("b.deps", useNode(k)))
	require.NoError(t, err)
	assert.Equal(t, domain.UpToDate, res)

	count := 0
	for n := range g.Nodes() {
		if n.Key() == k {
			count++
			assert.Equal(t, "a.deps", n.OwningFile().String())
		}
	}
	assert.Equal(t, 1, count)
	require.NoError(t, g.Verify())
}

func TestIntegrate_UseOnlyWithFingerprintIsContractViolation(t *testing.T) {
	g := domain.NewDepGraph()
	k := domain.NewKey(domain.KindTopLevel, "", "foo", domain.AspectInterface)
	_, err := g.Integrate(snapshot("a.deps", declNode(k, "fp1", "a.deps")))
	require.NoError(t, err)

	bad := domain.SnapshotNode{Key: k, Fingerprint: "fp2"}
	_, err = g.Integrate(snapshot("b.deps", bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExpatFingerprint))
}

func TestIntegrate_DefinitionDemotedToExpat(t *testing.T) {
	g := domain.NewDepGraph()
	k := domain.NewKey(domain.KindTopLevel, "", "foo", domain.AspectInterface)
	_, err := g.Integrate(snapshot("a.deps", declNode(k, "fp1", "a.deps")))
	require.NoError(t, err)

	// The declaration moved out of a.deps, but a.deps still uses the key.
	res, err := g.Integrate(snapshot("a.deps", useNode(k)))
	require.NoError(t, err)
	// The demotion itself is not a change; the fingerprint reset is.
	assert.Equal(t, domain.AffectsDownstream, res)

	for n := range g.Nodes() {
		if n.Key() == k {
			assert.True(t, n.IsExpat())
		}
	}
	require.NoError(t, g.Verify())
}

func TestIntegrate_RegistersExternalDependencies(t *testing.T) {
	g := domain.NewDepGraph()
	ext := domain.ExternalKey("libm.a")
	anchor := domain.NewKey(domain.KindFileAnchor, "", "d.deps", domain.AspectInterface)

	_, err := g.Integrate(snapshot("d.deps",
		declNode(anchor, "fp", "d.deps", ext),
		useNode(ext),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"libm.a"}, g.ExternalDependencyNames())

	// A second file using the same external must not duplicate the name.
	anchor2 := domain.NewKey(domain.KindFileAnchor, "", "e.deps", domain.AspectInterface)
	_, err = g.Integrate(snapshot("e.deps",
		declNode(anchor2, "fp", "e.deps", ext),
		useNode(ext),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"libm.a"}, g.ExternalDependencyNames())
	require.NoError(t, g.Verify())
}
