// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xcache: 有界容量、带 TTL 的进程内缓存，支持 FIFO / LRU / LFU 淘汰
package storage
