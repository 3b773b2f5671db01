// Package biz 提供文档问答服务的业务逻辑层。
//
// DocQAService 组合向量存储、向量化与生成三类外部能力，提供：
//   - Ingest: 上传文档的校验、抽取、分块、并发向量化与分批写入
//   - Query: 向量化问题、检索、置信度判断与回答生成
//   - DeleteDocument / Stats: 按文档删除与索引统计
package biz
