package depsreport

import (
	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Parse converts raw report bytes into a snapshot. The report path becomes
// the snapshot's file identifier and the owning file of every declaration.
func Parse(path string, data []byte) (*domain.Snapshot, error) {
	var doc reportDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse dependency report"), "path", path)
	}

	file := domain.NewInternedString(path)
	snapshot := &domain.Snapshot{
		File:  file,
		Nodes: make([]domain.SnapshotNode, 0, len(doc.Nodes)),
	}

	for i, dto := range doc.Nodes {
		key, err := convertKey(dto.Key)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "path", path), "node_index", i)
		}

		node := domain.SnapshotNode{
			Key:         key,
			Fingerprint: dto.Fingerprint,
		}
		if dto.Defines {
			node.OwningFile = file
		} else if dto.Fingerprint != "" {
			return nil, zerr.With(zerr.With(domain.ErrExpatFingerprint, "path", path), "node_index", i)
		}

		for _, useDTO := range dto.Uses {
			use, err := convertKey(useDTO)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "path", path), "node_index", i)
			}
			node.Uses = append(node.Uses, use)
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
	}

	return snapshot, nil
}

func convertKey(dto keyDTO) (domain.Key, error) {
	kind, err := domain.ParseKind(dto.Kind)
	if err != nil {
		return domain.Key{}, err
	}
	aspect, err := domain.ParseAspect(dto.Aspect)
	if err != nil {
		return domain.Key{}, err
	}
	return domain.NewKey(kind, dto.Context, dto.Name, aspect), nil
}
