// Package xcache 提供有界容量、可选淘汰策略、支持条目级 TTL 的进程内缓存。
//
// # 核心特性
//
//   - 泛型支持：任意 comparable 键类型和任意值类型
//   - 三种淘汰策略：FIFO、LRU、LFU，构造时选定，生命周期内不变
//   - 条目级 TTL：每次写入可指定过期时间，0 表示永不过期
//   - 谓词扫描：Search 返回所有满足谓词的存活条目
//   - 并发安全：所有公开方法串行执行
//
// # 淘汰策略
//
//   - [PolicyFIFO]：淘汰最早插入的键，读不影响顺序
//   - [PolicyLRU]：淘汰最久未被写或读的键；Search / Peek 不算访问
//   - [PolicyLFU]：淘汰访问计数最小的键，计数相同时淘汰最早插入的键
//
// 只有在写入新键且存活条目数已达容量时才淘汰，每次写入最多淘汰一个。
// 覆盖已有键不触发淘汰，但会把访问计数重置为 1，并移动到最新位置
// （等价于先删除再插入）。
//
// # 过期
//
// 过期是惰性的：不启动后台 goroutine，每个公开方法开始时先清理所有
// expiresAt <= now 的条目，再执行本身的操作。now 来自构造时注入的时钟
// （[WithClock]），同一次操作只读取一次，测试中可用 clockwork.FakeClock
// 推进时间而无需真实等待。
//
// # 并发模型
//
// 每个 Cache 持有一把 sync.Mutex。公开方法加锁后调用内部 *Locked 方法，
// 内部方法之间互相调用不再加锁（例如 WriteBatch 逐条执行写入、写入触发淘汰），
// 因此不需要可重入锁。
//
// 淘汰、过期等移除事件在解锁后统一通知：先输出 Debug 日志（[WithLogger]），
// 再调用 [WithOnRemoved] 回调，最后结束观测跨度（[WithObserver]）。
// 回调中可以安全地调用 Cache 自身方法。
//
// # 错误
//
// 只有构造会失败：容量非法返回 [ErrInvalidCapacity] 或 [ErrCapacityExceedsMax]，
// 策略非法返回 [ErrUnknownPolicy]，默认 TTL 为负返回 [ErrInvalidTTL]。读未命中、删除不存在的键都不是错误。
// Search 的谓词 panic 会原样传播给调用方，缓存状态保持一致。
package xcache
