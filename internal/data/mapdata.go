package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MapInfo holds the size of one map, loaded from map_list.yaml.
type MapInfo struct {
	MapID  int16  `yaml:"map_id"`
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`  // cells along x
	Height int    `yaml:"height"` // cells along z
}

// MapList is the set of maps that get a pheromone grid.
type MapList struct {
	maps map[int16]MapInfo
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// LoadMapList loads map sizes from YAML. A duplicate ID or a non-positive
// dimension is a configuration error.
func LoadMapList(path string) (*MapList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", path, err)
	}
	return ParseMapList(raw)
}

func ParseMapList(raw []byte) (*MapList, error) {
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	list := &MapList{maps: make(map[int16]MapInfo, len(file.Maps))}
	for _, info := range file.Maps {
		if info.Width <= 0 || info.Height <= 0 {
			return nil, fmt.Errorf("map %d (%s): invalid size %dx%d", info.MapID, info.Name, info.Width, info.Height)
		}
		if _, dup := list.maps[info.MapID]; dup {
			return nil, fmt.Errorf("map %d (%s): duplicate map_id", info.MapID, info.Name)
		}
		list.maps[info.MapID] = info
	}
	return list, nil
}

// Count returns the number of maps.
func (l *MapList) Count() int {
	return len(l.maps)
}

// Get returns metadata for a map, or nil if not found.
func (l *MapList) Get(mapID int16) *MapInfo {
	info, ok := l.maps[mapID]
	if !ok {
		return nil
	}
	return &info
}

// All returns every map ordered by ID.
func (l *MapList) All() []MapInfo {
	out := make([]MapInfo, 0, len(l.maps))
	for _, info := range l.maps {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapID < out[j].MapID })
	return out
}
