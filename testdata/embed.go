// Package testdata holds equivalent Storm settings in every source format.
package testdata

import "embed"

//go:embed storm.*
var Sources embed.FS

// Rendered is the document every file in Sources renders to.
const Rendered = `storm.zookeeper.servers: ['zk1.example.com','zk2.example.com']
nimbus.thrift.port: 6627
storm.local.dir: '/var/storm'
topology.debug: false
supervisor.slots.ports: [6700,6701]
`
