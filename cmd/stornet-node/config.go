package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
)

const envPrefix = "STORNET"

// config is a thin accessor over the viper tree with typed leaves.
type config struct {
	v *viper.Viper
}

func newConfig(path string) (*config, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("logger.level", "info")
	v.SetDefault("node.listen_address", ":8080")
	v.SetDefault("storage.path", "objects.db")
	v.SetDefault("session.path", "sessions.db")
	v.SetDefault("placement.cache_size", 1000)
	v.SetDefault("transport.timeout", "5s")
	v.SetDefault("replicator.put_timeout", "5s")
	v.SetDefault("policer.head_timeout", "5s")
	v.SetDefault("policer.batch_size", 10)
	v.SetDefault("policer.sleep_duration", "1s")
	v.SetDefault("pool.size", 32)

	if path != "" {
		v.SetConfigFile(path)

		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return &config{v: v}, nil
}

func (c *config) string(name string) string {
	return cast.ToString(c.v.Get(name))
}

func (c *config) int(name string) int {
	return cast.ToInt(c.v.Get(name))
}

func (c *config) uint32(name string) uint32 {
	return cast.ToUint32(c.v.Get(name))
}

func (c *config) duration(name string) time.Duration {
	return cast.ToDuration(c.v.Get(name))
}

func (c *config) bool(name string) bool {
	return cast.ToBool(c.v.Get(name))
}

// netmapFile is the YAML document describing the network map snapshot
// the node boots with.
type netmapFile struct {
	Epoch uint64 `yaml:"epoch"`

	Nodes []struct {
		ID         string            `yaml:"id"`
		Endpoint   string            `yaml:"endpoint"`
		Attributes map[string]string `yaml:"attributes"`
	} `yaml:"nodes"`
}

func loadNetMap(path string) (*netmap.NetMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network map file: %w", err)
	}

	var doc netmapFile

	err = yaml.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse network map file: %w", err)
	}

	nodes := make([]netmap.NodeInfo, 0, len(doc.Nodes))

	for _, n := range doc.Nodes {
		var ni netmap.NodeInfo

		ni.SetID(n.ID)
		ni.SetNetworkEndpoint(n.Endpoint)

		for k, v := range n.Attributes {
			ni.SetAttribute(k, v)
		}

		nodes = append(nodes, ni)
	}

	return netmap.New(doc.Epoch, nodes), nil
}
