// Package store 提供文档问答服务的向量存储层。
//
// VectorStore 是业务层唯一依赖的存储能力接口，
// 提供 Milvus 实现和一个仅用于本地调试与测试的内存实现。
package store
