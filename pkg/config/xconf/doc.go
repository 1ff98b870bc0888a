// Package xconf 基于 koanf 的最小化配置加载器。
//
// xconf 只负责把 YAML / JSON 文件或字节数据解析为 koanf 实例并反序列化到结构体，
// 不做字段校验和默认值注入：xcachectl 先填好默认值再 Unmarshal 覆盖，
// 校验交给 xcache.New（容量、淘汰策略非法时构造失败）。
//
// # 支持的格式
//
//   - YAML：.yaml, .yml
//   - JSON：.json
//
// # 示例
//
//	cfg, err := xconf.Load("cache.yaml")
//	if err != nil {
//		return err
//	}
//	var section struct {
//		Capacity int    `koanf:"capacity"`
//		Policy   string `koanf:"policy"`
//	}
//	err = cfg.Unmarshal("cache", &section)
//
// Unmarshal 使用 mapstructure 弱类型转换（字符串 "8" 可转为 int 8），
// 时长字段可直接写 "30s"。
//
// # 热加载
//
// [Watch] 监听配置文件所在目录，写入事件经过防抖后重新 [Load]，
// 结果（或错误）交给回调。编辑器的"写临时文件再 rename"也能被捕获。
//
//	w, err := xconf.Watch("cache.yaml", func(cfg *xconf.Config, err error) {
//		if err != nil {
//			return
//		}
//		var log struct {
//			Level string `koanf:"level"`
//		}
//		if cfg.Unmarshal("log", &log) == nil {
//			onLevel(log.Level)
//		}
//	})
//	if err != nil {
//		return err
//	}
//	if err := w.Start(); err != nil {
//		return err
//	}
//	defer w.Stop()
package xconf
