package dataimport

import "github.com/Yuri05/OSPSuite.Core/pkg/contracts/domain"

// ReloadDataSets describes how a fresh import relates to repositories that
// were imported earlier from the same configuration. Replaced[i] is the
// existing repository that Overwritten[i] takes the place of.
type ReloadDataSets struct {
	New         []*domain.DataRepository
	Overwritten []*domain.DataRepository
	Replaced    []*domain.DataRepository
	Deleted     []*domain.DataRepository
}

// CompareForReload matches repositories by extended properties. A fresh
// repository whose properties all appear on an existing one overwrites it;
// each existing repository is claimed by at most one fresh repository.
// Existing repositories that no fresh repository claimed are deleted.
func CompareForReload(fresh, existing []*domain.DataRepository) ReloadDataSets {
	var result ReloadDataSets
	claimed := make([]bool, len(existing))
	for _, repo := range fresh {
		i := firstMatch(repo, existing, claimed)
		if i < 0 {
			result.New = append(result.New, repo)
			continue
		}
		claimed[i] = true
		result.Overwritten = append(result.Overwritten, repo)
		result.Replaced = append(result.Replaced, existing[i])
	}
	for i, repo := range existing {
		if !claimed[i] {
			result.Deleted = append(result.Deleted, repo)
		}
	}
	return result
}

func firstMatch(target *domain.DataRepository, list []*domain.DataRepository, claimed []bool) int {
	for i, candidate := range list {
		if !claimed[i] && propertiesMatch(target, candidate) {
			return i
		}
	}
	return -1
}

func propertiesMatch(target, candidate *domain.DataRepository) bool {
	for _, p := range target.ExtendedProperties {
		found := false
		for _, v := range candidate.ExtendedPropertyValues(p.Name) {
			if v == p.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
