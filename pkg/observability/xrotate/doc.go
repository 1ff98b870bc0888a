// Package xrotate 为 xcachectl 的诊断日志提供按大小轮转的文件输出。
//
// 唯一实现 [NewLumberjack] 基于 gopkg.in/natefinch/lumberjack.v2，
// 返回的 [Rotator] 满足 io.WriteCloser，可直接交给 xlog 的 Builder.SetRotation。
//
// 缓存在调试模式下会为每次淘汰、过期输出一行日志，长时间压测时文件增长很快，
// 因此默认只保留少量备份并开启压缩。
package xrotate
